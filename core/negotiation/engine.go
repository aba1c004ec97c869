package negotiation

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kilianp07/vpp/core/events"
	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/internal/workpool"
)

// Optimizer picks the clearing price and dispatch of a coalition.
type Optimizer interface {
	Optimize(ctx context.Context, opp model.Opportunity, coalition []model.CoalitionMember) (model.OptimizationResult, error)
}

// Publisher receives negotiation events. eventbus.TypedBus[events.Event]
// satisfies it.
type Publisher interface {
	Publish(events.Event)
}

// Engine runs negotiation cycles. An Engine holds no per-cycle state and may
// serve several cycles one after another.
type Engine struct {
	cfg       Config
	collector *BidCollector
	offers    *OfferGenerator
	responses *ResponseCollector
	former    *CoalitionFormer
	optimizer Optimizer
	bus       Publisher
	log       logger.Logger
	now       func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(e *Engine) { e.log = logger.OrNop(l) } }

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithPublisher publishes round and result events on p.
func WithPublisher(p Publisher) Option { return func(e *Engine) { e.bus = p } }

// NewEngine builds an engine. The worker pool is sized from cfg.Workers and
// shared by bid and response collection.
func NewEngine(cfg Config, opt Optimizer, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("negotiation config: %w", err)
	}
	if opt == nil {
		return nil, fmt.Errorf("negotiation: optimizer is required")
	}
	e := &Engine{cfg: cfg, optimizer: opt, log: logger.Nop{}, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	pool := workpool.New(cfg.Workers)
	e.collector = NewBidCollector(cfg.ParticipationFloorKW, pool, e.log)
	e.offers = NewOfferGenerator(cfg)
	e.responses = NewResponseCollector(pool, e.log)
	e.former = NewCoalitionFormer(cfg.ScheduleIntervalMinutes)
	return e, nil
}

// Collector exposes the engine's bid collector.
func (e *Engine) Collector() *BidCollector { return e.collector }

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// cycle is the state of one negotiation.
type cycle struct {
	opp        model.Opportunity
	dl         *decisionLog
	initial    []model.SupplierBid
	originals  map[string]model.SupplierBid
	candidates []Candidate
	countered  map[string]bool
	committed  float64
	rounds     int
}

const tracerName = "github.com/kilianp07/vpp/core/negotiation"

// Negotiate runs one cycle for opp against the suppliers. Negotiation
// failures are reported through an unsuccessful result; only contract
// violations and invalid input are returned as errors. Cancelling ctx stops
// further rounds but lets the cycle conclude with what was collected.
//
// Each cycle is traced with the global OpenTelemetry tracer provider.
func (e *Engine) Negotiate(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) (model.NegotiationResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Engine.Negotiate", trace.WithAttributes(
		attribute.String("vpp.opportunity_id", opp.ID),
		attribute.String("vpp.service", string(opp.Service)),
		attribute.Float64("vpp.required_kw", opp.RequiredKW),
		attribute.Int("vpp.suppliers", len(suppliers)),
	))
	defer span.End()
	res, err := e.negotiate(ctx, opp, suppliers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	span.SetAttributes(
		attribute.Bool("vpp.success", res.Success),
		attribute.Int("vpp.rounds", res.RoundsExecuted),
		attribute.Int("vpp.members", len(res.Coalition)),
	)
	if !res.Success {
		span.SetAttributes(attribute.String("vpp.failure_reason", res.FailureReason))
	}
	return res, nil
}

func (e *Engine) negotiate(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) (model.NegotiationResult, error) {
	if err := opp.Validate(); err != nil {
		return model.NegotiationResult{}, fmt.Errorf("invalid opportunity: %w", err)
	}
	start := e.now()
	c := &cycle{
		opp:       opp,
		dl:        &decisionLog{opp: opp.ID, log: e.log},
		originals: make(map[string]model.SupplierBid),
		countered: make(map[string]bool),
	}
	c.dl.add("collect", "opportunity %s: %s %.2f kW at reference %.2f, deadline %s",
		opp.ID, opp.Service, opp.RequiredKW, opp.ReferencePrice, opp.Deadline.Format(time.RFC3339))

	bids, err := e.collector.Collect(ctx, opp, suppliers)
	if err != nil {
		return model.NegotiationResult{}, err
	}
	if len(bids) == 0 {
		c.dl.add("collect", "%s: %v from %d suppliers", model.ReasonNoBids, ErrNoBids, len(suppliers))
		return e.finish(c, nil, nil, model.ReasonNoBids, start), nil
	}
	c.initial = Rank(bids)
	for _, b := range c.initial {
		c.originals[b.SupplierID] = b
	}
	c.dl.add("collect", "%d eligible bids from %d suppliers, %.2f kW offered", len(bids), len(suppliers), offeredKW(bids))

	if err := e.runRounds(ctx, c, supplier.Index(suppliers)); err != nil {
		return model.NegotiationResult{}, err
	}

	formed := e.former.Form(c.candidates, c.initial, c.countered, opp)
	for _, d := range formed.Decisions {
		c.dl.add("coalition", "%s", d)
	}
	total := model.TotalCommittedKW(formed.Members)
	minKW := e.cfg.MinCoverageRatio * opp.RequiredKW
	if total+eps < minKW || len(formed.Members) < e.cfg.MinCoalitionSize {
		c.dl.add("coalition", "%s: %d members committing %.2f kW, need %.2f kW and at least %d members; coalition discarded",
			model.ReasonInsufficientCapacity, len(formed.Members), total, minKW, e.cfg.MinCoalitionSize)
		return e.finish(c, nil, nil, model.ReasonInsufficientCapacity, start), nil
	}
	c.dl.add("coalition", "%d members committing %.2f kW", len(formed.Members), total)

	opt, err := e.optimizer.Optimize(context.WithoutCancel(ctx), opp, formed.Members)
	if err != nil {
		return model.NegotiationResult{}, fmt.Errorf("optimize coalition: %w", err)
	}
	fallback := ""
	if opt.UsedFallback {
		fallback = " (fallback)"
	}
	c.dl.add("optimize", "solver %s%s: clearing price %.2f, dispatch %.3f MW, expected profit %.2f",
		opt.Status, fallback, opt.BidPrice, opt.TotalBidMW, opt.ExpectedProfit)
	e.publish(events.OptimizationFinished{
		OpportunityID: opp.ID,
		Optimizer:     "hybrid",
		DeliveryTime:  opp.DeliveryTime,
		DurationHours: opp.DurationHours,
		Result:        opt,
		Time:          e.now(),
	})
	return e.finish(c, formed.Members, &opt, "", start), nil
}

// runRounds executes offer rounds until the requirement is covered, no bid
// is left open, the deadline passes or max_rounds is reached. A started round
// always completes.
func (e *Engine) runRounds(ctx context.Context, c *cycle, index map[string]supplier.Supplier) error {
	open := c.initial
	for round := 1; round <= e.cfg.MaxRounds; round++ {
		stage := roundStage(round)
		switch {
		case c.committed+eps >= c.opp.RequiredKW:
			c.dl.add(stage, "not started: %.2f kW committed covers the requirement", c.committed)
			return nil
		case len(open) == 0:
			c.dl.add(stage, "not started: no open bids")
			return nil
		case !e.now().Before(c.opp.Deadline):
			c.dl.add(stage, "not started: response deadline reached")
			return nil
		case ctx.Err() != nil:
			c.dl.add(stage, "not started: %v", ctx.Err())
			return nil
		}

		offers := e.offers.Generate(open, c.opp, round, c.committed)
		if len(offers) == 0 {
			c.dl.add(stage, "no offers generated")
			return nil
		}
		c.rounds = round
		offersSent.Add(float64(len(offers)))
		for _, o := range offers {
			c.dl.add(stage, "offer %s to %s: %.2f kW at %.2f + bonus %.2f (%s)",
				o.ID, o.Target(), o.RequestedKW, o.Price, o.Bonus, o.Urgency)
		}

		responses, err := e.responses.Collect(ctx, offers, index)
		if err != nil {
			c.dl.add(stage, "aborted: %v", err)
			return err
		}

		answered := make(map[string]model.SupplierResponse, len(responses))
		offered := make(map[string]model.CounterOffer, len(offers))
		for i, r := range responses {
			answered[offers[i].Target()] = r
			offered[offers[i].Target()] = offers[i]
		}
		ev := events.RoundCompleted{OpportunityID: c.opp.ID, Round: round, Offers: len(offers)}
		var next []model.SupplierBid
		for _, bid := range open {
			id := bid.SupplierID
			r, ok := answered[id]
			if !ok {
				next = append(next, bid)
				continue
			}
			c.countered[id] = true
			o := offered[id]
			switch {
			case r.Accepted:
				capKW := math.Min(r.CapacityKW(o.RequestedKW), c.originals[id].MaxCapacityKW)
				c.committed += math.Max(0, capKW)
				c.candidates = append(c.candidates, Candidate{Offer: o, Response: r, Bid: bid, Original: c.originals[id]})
				ev.Accepted++
				responsesTotal.WithLabelValues("accepted").Inc()
				c.dl.add(stage, "%s accepted %.2f kW (confidence %.2f)", id, capKW, r.Confidence)
			case r.IsCounter():
				capKW := 0.0
				if r.CounterCapacityKW != nil {
					capKW = *r.CounterCapacityKW
				}
				next = append(next, bid.Revised(round+1, *r.CounterPrice, capKW))
				ev.Countered++
				responsesTotal.WithLabelValues("countered").Inc()
				c.dl.add(stage, "%s countered at %.2f: %s", id, *r.CounterPrice, r.RejectionReason)
			default:
				ev.Rejected++
				responsesTotal.WithLabelValues("rejected").Inc()
				c.dl.add(stage, "%s rejected: %s", id, r.RejectionReason)
			}
		}
		ev.CommittedKW = c.committed
		ev.Time = e.now()
		e.publish(ev)
		c.dl.add(stage, "completed: %d accepted, %d countered, %d rejected, %.2f kW committed",
			ev.Accepted, ev.Countered, ev.Rejected, c.committed)
		open = Rank(Eligible(next, e.cfg.ParticipationFloorKW))
	}
	return nil
}

func (e *Engine) finish(c *cycle, members []model.CoalitionMember, opt *model.OptimizationResult, reason string, start time.Time) model.NegotiationResult {
	res := model.NegotiationResult{
		SchemaVersion:  model.SchemaVersion,
		OpportunityID:  c.opp.ID,
		Success:        reason == "",
		FailureReason:  reason,
		Coalition:      members,
		RoundsExecuted: c.rounds,
		Optimization:   opt,
	}
	if res.Coalition == nil {
		res.Coalition = []model.CoalitionMember{}
	}
	if opt != nil {
		res.ClearingPrice = opt.BidPrice
	}
	res.TotalCommittedMW = model.TotalCommittedKW(members) / 1000
	for _, m := range members {
		res.MeanSatisfaction += m.Satisfaction
	}
	if len(members) > 0 {
		res.MeanSatisfaction /= float64(len(members))
	}
	outcome := "success"
	if reason != "" {
		outcome = reason
	}
	c.dl.add("result", "%s after %d rounds: %d members, %.3f MW at %.2f",
		outcome, res.RoundsExecuted, len(members), res.TotalCommittedMW, res.ClearingPrice)
	res.Log = c.dl.lines
	resultsTotal.WithLabelValues(outcome).Inc()
	roundsExecuted.WithLabelValues(string(c.opp.Service)).Observe(float64(res.RoundsExecuted))
	e.publish(events.NegotiationFinished{Service: c.opp.Service, Result: res, Duration: e.now().Sub(start), Time: e.now()})
	return res
}

func offeredKW(bids []model.SupplierBid) float64 {
	var total float64
	for _, b := range bids {
		total += b.AvailableKW
	}
	return total
}
