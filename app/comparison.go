package app

import (
	"github.com/shopspring/decimal"

	"github.com/kilianp07/vpp/core/model"
)

// Winner values of a Comparison.
const (
	WinnerNegotiated  = "negotiated"
	WinnerCentralized = "centralized"
	WinnerTie         = "tie"
	WinnerNone        = "none"
)

// Comparison puts a negotiated result next to the centralized baseline for
// the same opportunity. Differences are negotiated minus baseline.
type Comparison struct {
	OpportunityID    string                   `json:"opportunity_id"`
	Negotiated       model.NegotiationResult  `json:"negotiated"`
	Baseline         model.OptimizationResult `json:"baseline"`
	CapacityDiffMW   float64                  `json:"capacity_diff_mw"`
	PriceDiff        float64                  `json:"price_diff"`
	ProfitDiff       float64                  `json:"profit_diff"`
	SatisfactionDiff float64                  `json:"satisfaction_diff"`
	Violations       int                      `json:"violations"`
	Winner           string                   `json:"winner"`
}

// NegotiatedProfit is the expected profit of the negotiated coalition, zero
// when no optimization ran.
func NegotiatedProfit(r model.NegotiationResult) float64 {
	if r.Optimization == nil {
		return 0
	}
	return r.Optimization.ExpectedProfit
}

func diff(a, b float64, places int32) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(places).InexactFloat64()
}

// Compare builds the comparison report. The winner is the approach with the
// higher expected profit among the successful ones.
func Compare(neg model.NegotiationResult, base model.OptimizationResult) Comparison {
	c := Comparison{
		OpportunityID: neg.OpportunityID,
		Negotiated:    neg,
		Baseline:      base,
		Violations:    len(base.Violations),
	}
	negProfit := NegotiatedProfit(neg)
	c.CapacityDiffMW = diff(neg.TotalCommittedMW, base.TotalBidMW, 6)
	c.PriceDiff = diff(neg.ClearingPrice, base.BidPrice, 2)
	c.ProfitDiff = diff(negProfit, base.ExpectedProfit, 2)
	c.SatisfactionDiff = diff(neg.MeanSatisfaction, base.Satisfaction, 2)

	switch {
	case !neg.Success && !base.Success:
		c.Winner = WinnerNone
	case !base.Success:
		c.Winner = WinnerNegotiated
	case !neg.Success:
		c.Winner = WinnerCentralized
	case c.ProfitDiff > 0:
		c.Winner = WinnerNegotiated
	case c.ProfitDiff < 0:
		c.Winner = WinnerCentralized
	default:
		c.Winner = WinnerTie
	}
	return c
}
