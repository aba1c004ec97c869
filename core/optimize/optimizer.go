package optimize

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
)

// solveDispatch runs the LP over items and falls back to the closed form when
// the solver gives up. It never fails for a non-empty item set.
func solveDispatch(ctx context.Context, name string, s Solver, log logger.Logger, opp model.Opportunity, items []item) (model.OptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.OptimizationResult{}, err
	}
	res := model.OptimizationResult{
		Dispatch: make(map[string]float64, len(items)),
		Payments: make(map[string]float64, len(items)),
	}
	if len(items) == 0 {
		res.Status = model.StatusInfeasible
		log.Warnf("%s: nothing to dispatch for %s", name, opp.ID)
		return res, nil
	}

	price := share(opp.ReferencePrice, "0.98")
	prog := buildProgram(items, opp.RequiredKW, price)
	start := time.Now()
	sol, err := s.Solve(prog.c, prog.A, prog.b)
	res.Status = solverStatus(sol.Status, err)
	observeSolve(name, res.Status, time.Since(start))

	var dispatch []float64
	if err != nil {
		log.Warnf("%s: solver %s for %s: %v, using fallback", name, res.Status, opp.ID, err)
		fallbackTotal.WithLabelValues(name).Inc()
		price = fallbackPrice(items, opp.ReferencePrice)
		dispatch = fallbackDispatch(items)
		res.UsedFallback = true
	} else {
		dispatch = prog.dispatch(items, sol.X)
	}

	total := decimal.Zero
	paid := decimal.Zero
	for i, it := range items {
		res.Dispatch[it.id] = dispatch[i]
		pay := payment(it.cost, dispatch[i])
		res.Payments[it.id] = pay.InexactFloat64()
		paid = paid.Add(pay)
		total = total.Add(dec(dispatch[i]))
	}
	revenue := price.Mul(total).Div(kWhPerMWh).Round(2)
	res.Success = true
	res.BidPrice = price.InexactFloat64()
	res.TotalBidMW = total.Div(kWhPerMWh).InexactFloat64()
	res.ExpectedProfit = revenue.Sub(paid).InexactFloat64()
	log.Debugw("dispatch optimized", map[string]any{
		"optimizer":   name,
		"opportunity": opp.ID,
		"status":      string(res.Status),
		"price":       res.BidPrice,
		"total_mw":    res.TotalBidMW,
		"profit":      res.ExpectedProfit,
		"fallback":    res.UsedFallback,
	})
	return res, nil
}

func solverStatus(reported model.SolverStatus, err error) model.SolverStatus {
	switch {
	case err == nil:
		return model.StatusOptimal
	case errors.Is(err, ErrInfeasible):
		return model.StatusInfeasible
	case errors.Is(err, ErrUnbounded):
		return model.StatusUnbounded
	case reported != "" && reported != model.StatusOptimal:
		return reported
	}
	return model.StatusFailed
}
