package negotiation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vpp/core/events"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/optimize"
	"github.com/kilianp07/vpp/core/supplier"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(ev events.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventName()
	}
	return out
}

func newEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	ocfg := optimize.Config{}
	ocfg.SetDefaults()
	opts = append([]Option{WithClock(fixedClock(testStart))}, opts...)
	e, err := NewEngine(cfg, optimize.NewPriceOptimizer(ocfg, nil, nil), opts...)
	require.NoError(t, err)
	return e
}

func logContains(res model.NegotiationResult, s string) bool {
	for _, l := range res.Log {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func TestNegotiateBlockBidScenario(t *testing.T) {
	rec := &recorder{}
	e := newEngine(t, Config{}, WithPublisher(rec))

	res, err := e.Negotiate(context.Background(), opportunity(2000, 75), blockFleet(10, 300, 70))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.FailureReason)
	assert.Equal(t, model.SchemaVersion, res.SchemaVersion)
	assert.Equal(t, 1, res.RoundsExecuted)
	assert.Equal(t, []string{"sup-0", "sup-1", "sup-2", "sup-3", "sup-4", "sup-5", "sup-6"}, memberIDs(res.Coalition))
	for _, m := range res.Coalition {
		assert.Equal(t, 300.0, m.CommittedKW)
		assert.Equal(t, 70.0, m.AgreedPrice)
		assert.Equal(t, model.AssetBESS, m.AssetType)
	}
	assert.InDelta(t, 2.1, res.TotalCommittedMW, 1e-9)
	assert.LessOrEqual(t, res.TotalCommittedMW*1000, 1.5*2000)
	assert.Equal(t, 73.5, res.ClearingPrice)
	require.NotNil(t, res.Optimization)
	assert.Equal(t, model.StatusOptimal, res.Optimization.Status)
	assert.InDelta(t, 7.35, res.Optimization.ExpectedProfit, 1e-9)
	for _, m := range res.Coalition {
		assert.InDelta(t, 300, res.Optimization.Dispatch[m.SupplierID], 1e-6)
	}
	assert.True(t, logContains(res, "[round 2] not started"))

	assert.Equal(t, []string{"round_completed", "optimization_finished", "negotiation_finished"}, rec.names())
}

func TestNegotiateNoSuppliers(t *testing.T) {
	e := newEngine(t, Config{})
	res, err := e.Negotiate(context.Background(), opportunity(2000, 75), nil)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, model.ReasonNoBids, res.FailureReason)
	assert.NotNil(t, res.Coalition)
	assert.Empty(t, res.Coalition)
	assert.Zero(t, res.RoundsExecuted)
	assert.Nil(t, res.Optimization)
	assert.True(t, logContains(res, model.ReasonNoBids))
}

func TestNegotiateInsufficientCapacity(t *testing.T) {
	e := newEngine(t, Config{})
	res, err := e.Negotiate(context.Background(), opportunity(2000, 75), blockFleet(2, 300, 70))
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, model.ReasonInsufficientCapacity, res.FailureReason)
	assert.Empty(t, res.Coalition)
	assert.Zero(t, res.TotalCommittedMW)
	assert.Equal(t, 1, res.RoundsExecuted)
	assert.True(t, logContains(res, "coalition discarded"))
}

func TestNegotiateMinCoalitionSize(t *testing.T) {
	e := newEngine(t, Config{})
	res, err := e.Negotiate(context.Background(), opportunity(1000, 75), blockFleet(1, 1200, 70))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, model.ReasonInsufficientCapacity, res.FailureReason)
}

func TestNegotiateAfterDeadline(t *testing.T) {
	e := newEngine(t, Config{}, WithClock(fixedClock(testStart.Add(2*time.Hour))))
	res, err := e.Negotiate(context.Background(), opportunity(2000, 75), blockFleet(10, 300, 70))
	require.NoError(t, err)

	assert.Zero(t, res.RoundsExecuted)
	assert.True(t, logContains(res, "response deadline reached"))
	// cheap initial bids still join through fold-in
	assert.True(t, res.Success)
	assert.Len(t, res.Coalition, 7)
}

func TestNegotiateConvergesOverRounds(t *testing.T) {
	var mu sync.Mutex
	rounds := map[int]int{}
	counterFirst := func(o model.CounterOffer) model.SupplierResponse {
		mu.Lock()
		rounds[o.Round]++
		mu.Unlock()
		if o.Round == 1 {
			return model.SupplierResponse{ID: "r-" + o.ID, OfferID: o.ID, SupplierID: o.Target(),
				CounterPrice: model.Float(95), RejectionReason: "price too low", Confidence: 0.5}
		}
		return accept(o)
	}
	suppliers := []supplier.Supplier{
		scripted(bid("a", 600, 90), counterFirst),
		scripted(bid("b", 600, 90), counterFirst),
	}
	rec := &recorder{}
	e := newEngine(t, Config{}, WithPublisher(rec))
	res, err := e.Negotiate(context.Background(), opportunity(1000, 100), suppliers)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 2, res.RoundsExecuted)
	assert.Equal(t, map[int]int{1: 2, 2: 2}, rounds)
	assert.Equal(t, []string{"a", "b"}, memberIDs(res.Coalition))
	for _, m := range res.Coalition {
		assert.Equal(t, 95.0, m.AgreedPrice)
		assert.Greater(t, m.Satisfaction, 6.0)
	}
	assert.Greater(t, res.ClearingPrice, 0.0)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	first, ok := rec.events[0].(events.RoundCompleted)
	require.True(t, ok)
	assert.Equal(t, 2, first.Countered)
	assert.Zero(t, first.CommittedKW)
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *steppingClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func TestNegotiateDeadlinePassesBetweenRounds(t *testing.T) {
	clock := &steppingClock{now: testStart}
	var mu sync.Mutex
	rounds := map[int]int{}
	slowCounter := func(o model.CounterOffer) model.SupplierResponse {
		mu.Lock()
		rounds[o.Round]++
		mu.Unlock()
		clock.Set(testStart.Add(90 * time.Minute))
		return model.SupplierResponse{ID: "r-" + o.ID, OfferID: o.ID, SupplierID: o.Target(),
			CounterPrice: model.Float(95), RejectionReason: "price too low", Confidence: 0.5}
	}
	suppliers := []supplier.Supplier{
		scripted(bid("a", 600, 90), slowCounter),
		scripted(bid("b", 600, 90), slowCounter),
	}
	e := newEngine(t, Config{}, WithClock(clock.Now))
	res, err := e.Negotiate(context.Background(), opportunity(1000, 100), suppliers)
	require.NoError(t, err)

	assert.Equal(t, 1, res.RoundsExecuted)
	assert.Equal(t, map[int]int{1: 2}, rounds)
	assert.True(t, logContains(res, "[round 2] not started: response deadline reached"))
}

func TestNegotiateRespectsMaxRounds(t *testing.T) {
	never := func(o model.CounterOffer) model.SupplierResponse {
		return model.SupplierResponse{ID: "r-" + o.ID, OfferID: o.ID, SupplierID: o.Target(),
			CounterPrice: model.Float(150), RejectionReason: "no"}
	}
	suppliers := []supplier.Supplier{scripted(bid("a", 600, 140), never), scripted(bid("b", 600, 140), never)}
	e := newEngine(t, Config{MaxRounds: 2})
	res, err := e.Negotiate(context.Background(), opportunity(1000, 100), suppliers)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RoundsExecuted)
	assert.False(t, res.Success)
}

func TestNegotiateContractViolationIsFatal(t *testing.T) {
	liar := func(o model.CounterOffer) model.SupplierResponse {
		return model.SupplierResponse{OfferID: "made-up", SupplierID: o.Target(), Accepted: true}
	}
	suppliers := []supplier.Supplier{scripted(bid("a", 600, 70), accept), scripted(bid("b", 600, 70), liar)}
	e := newEngine(t, Config{})
	_, err := e.Negotiate(context.Background(), opportunity(1000, 100), suppliers)
	require.ErrorIs(t, err, ErrContractViolation)
}

func TestNegotiateInvalidOpportunity(t *testing.T) {
	e := newEngine(t, Config{})
	opp := opportunity(0, 75)
	_, err := e.Negotiate(context.Background(), opp, blockFleet(2, 300, 70))
	require.Error(t, err)
}

func TestNegotiateCancelledContextStopsRounds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newEngine(t, Config{})
	res, err := e.Negotiate(ctx, opportunity(2000, 75), blockFleet(10, 300, 70))
	require.NoError(t, err)
	assert.Zero(t, res.RoundsExecuted)
}

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(Config{MinCoverageRatio: 2}, optimize.NewPriceOptimizer(optimize.Config{}, nil, nil))
	require.Error(t, err)
	_, err = NewEngine(Config{}, nil)
	require.Error(t, err)
}
