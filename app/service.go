package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/vpp/config"
	"github.com/kilianp07/vpp/core/events"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/negotiation"
	"github.com/kilianp07/vpp/core/optimize"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/infra/logger"
)

// Service runs the negotiation engine and the centralized baseline side by
// side for each opportunity.
type Service struct {
	engine   *negotiation.Engine
	baseline *optimize.CentralizedAllocator
	bus      negotiation.Publisher
	now      func() time.Time
	log      logger.Logger
}

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	bus negotiation.Publisher
	now func() time.Time
}

// WithPublisher publishes negotiation and optimization events on p.
func WithPublisher(p negotiation.Publisher) Option {
	return func(o *serviceOptions) { o.bus = p }
}

// WithClock replaces the wall clock used for deadlines and event times.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.New("service")
	hybrid := optimize.NewPriceOptimizer(cfg.Optimizer, nil, logger.New("optimizer"))
	engineOpts := []negotiation.Option{
		negotiation.WithLogger(logger.New("negotiation")),
		negotiation.WithClock(o.now),
	}
	if o.bus != nil {
		engineOpts = append(engineOpts, negotiation.WithPublisher(o.bus))
	}
	engine, err := negotiation.NewEngine(cfg.Negotiation, hybrid, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("negotiation engine: %w", err)
	}
	return &Service{
		engine:   engine,
		baseline: optimize.NewCentralizedAllocator(cfg.Optimizer, nil, logger.New("baseline")),
		bus:      o.bus,
		now:      o.now,
		log:      log,
	}, nil
}

// Negotiate runs only the negotiation engine.
func (s *Service) Negotiate(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) (model.NegotiationResult, error) {
	return s.engine.Negotiate(ctx, opp, suppliers)
}

// Baseline queries every supplier and allocates the opportunity centrally.
func (s *Service) Baseline(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) (model.OptimizationResult, error) {
	bids, err := s.engine.Collector().Query(ctx, opp, suppliers)
	if err != nil {
		return model.OptimizationResult{}, fmt.Errorf("baseline query: %w", err)
	}
	res, err := s.baseline.Allocate(ctx, opp, bids)
	if err != nil {
		return res, fmt.Errorf("baseline allocation: %w", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.OptimizationFinished{
			OpportunityID: opp.ID,
			Optimizer:     "centralized",
			DeliveryTime:  opp.DeliveryTime,
			DurationHours: opp.DurationHours,
			Result:        res,
			Time:          s.now(),
		})
	}
	return res, nil
}

// Compare negotiates the opportunity and runs the baseline concurrently, then
// reports both results side by side.
func (s *Service) Compare(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) (Comparison, error) {
	var (
		neg  model.NegotiationResult
		base model.OptimizationResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		neg, err = s.Negotiate(gctx, opp, suppliers)
		return err
	})
	g.Go(func() error {
		var err error
		base, err = s.Baseline(gctx, opp, suppliers)
		return err
	})
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	c := Compare(neg, base)
	s.log.Infof("opportunity %s: negotiated %.3f MW at %.2f, baseline %.3f MW at %.2f, profit diff %.2f, winner %s",
		opp.ID, neg.TotalCommittedMW, neg.ClearingPrice, base.TotalBidMW, base.BidPrice, c.ProfitDiff, c.Winner)
	return c, nil
}
