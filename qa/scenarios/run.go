package scenarios

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/negotiation"
	"github.com/kilianp07/vpp/core/optimize"
	"github.com/kilianp07/vpp/core/supplier"
)

// Suppliers builds the fleet of the scenario.
func (sc *Scenario) Suppliers(now time.Time) []supplier.Supplier {
	failing := make(map[string]bool, len(sc.Fleet.Failing))
	for _, id := range sc.Fleet.Failing {
		failing[id] = true
	}
	profiles := sc.Fleet.ToProfiles(now)
	out := make([]supplier.Supplier, 0, len(profiles))
	for _, p := range profiles {
		if failing[p.ID] {
			id := p.ID
			out = append(out, supplier.Funcs{
				SupplierID: id,
				Query: func(context.Context, model.Opportunity) (model.SupplierBid, error) {
					return model.SupplierBid{}, fmt.Errorf("%s unreachable", id)
				},
			})
			continue
		}
		out = append(out, supplier.NewProsumer(p))
	}
	return out
}

// Run negotiates the scenario with the clock frozen at now.
func Run(ctx context.Context, sc *Scenario, now time.Time, log logger.Logger) (model.NegotiationResult, error) {
	opp, err := sc.Opportunity.ToModel(now)
	if err != nil {
		return model.NegotiationResult{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	cfg := negotiation.Config{MaxRounds: sc.MaxRounds, MinCoalitionSize: sc.MinCoalitionSize}
	var optCfg optimize.Config
	optCfg.SetDefaults()
	engine, err := negotiation.NewEngine(cfg, optimize.NewPriceOptimizer(optCfg, nil, log),
		negotiation.WithLogger(log), negotiation.WithClock(func() time.Time { return now }))
	if err != nil {
		return model.NegotiationResult{}, err
	}
	return engine.Negotiate(ctx, opp, sc.Suppliers(now))
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// Verify compares a result with the expectations and reports every mismatch.
func (e Expected) Verify(res model.NegotiationResult) error {
	var errs []error
	if e.Success != nil && res.Success != *e.Success {
		errs = append(errs, fmt.Errorf("success: got %v, want %v", res.Success, *e.Success))
	}
	if e.FailureReason != "" && res.FailureReason != e.FailureReason {
		errs = append(errs, fmt.Errorf("failure reason: got %q, want %q", res.FailureReason, e.FailureReason))
	}
	if e.Members != nil && len(res.Coalition) != *e.Members {
		errs = append(errs, fmt.Errorf("members: got %d, want %d", len(res.Coalition), *e.Members))
	}
	if e.CommittedMW != nil && !near(res.TotalCommittedMW, *e.CommittedMW) {
		errs = append(errs, fmt.Errorf("committed MW: got %v, want %v", res.TotalCommittedMW, *e.CommittedMW))
	}
	if e.ClearingPrice != nil && !near(res.ClearingPrice, *e.ClearingPrice) {
		errs = append(errs, fmt.Errorf("clearing price: got %v, want %v", res.ClearingPrice, *e.ClearingPrice))
	}
	if e.Rounds != nil && res.RoundsExecuted != *e.Rounds {
		errs = append(errs, fmt.Errorf("rounds: got %d, want %d", res.RoundsExecuted, *e.Rounds))
	}
	if e.ExpectedProfit != nil {
		var got float64
		if res.Optimization != nil {
			got = res.Optimization.ExpectedProfit
		}
		if !near(got, *e.ExpectedProfit) {
			errs = append(errs, fmt.Errorf("expected profit: got %v, want %v", got, *e.ExpectedProfit))
		}
	}
	return errors.Join(errs...)
}
