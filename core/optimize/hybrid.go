package optimize

import (
	"context"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
)

// PriceOptimizer picks the clearing price and dispatch for a negotiated
// coalition, paying every member its agreed price.
type PriceOptimizer struct {
	solver Solver
	log    logger.Logger
}

// NewPriceOptimizer returns a PriceOptimizer. A nil solver selects the gonum
// simplex solver with the configured tolerance.
func NewPriceOptimizer(cfg Config, s Solver, log logger.Logger) *PriceOptimizer {
	if s == nil {
		s = SimplexSolver{Tol: cfg.Tolerance}
	}
	return &PriceOptimizer{solver: s, log: logger.OrNop(log)}
}

// Optimize solves the profit LP over the coalition. For a non-empty coalition
// the result is always successful with a positive price; only context
// cancellation produces an error.
func (o *PriceOptimizer) Optimize(ctx context.Context, opp model.Opportunity, coalition []model.CoalitionMember) (model.OptimizationResult, error) {
	items := make([]item, len(coalition))
	for i, m := range coalition {
		items[i] = item{id: m.SupplierID, cost: m.AgreedPrice, cap: m.CommittedKW}
	}
	res, err := solveDispatch(ctx, "hybrid", o.solver, o.log, opp, items)
	if err != nil {
		return res, err
	}
	res.Satisfaction = meanSatisfaction(coalition)
	return res, nil
}

func meanSatisfaction(members []model.CoalitionMember) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += m.Satisfaction
	}
	return sum / float64(len(members))
}
