// Package export renders negotiation outcomes as JSON, CSV or text tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kilianp07/vpp/app"
	"github.com/kilianp07/vpp/core/model"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// WriteCSV writes one row per coalition member with its dispatch and payment.
func WriteCSV(w io.Writer, res model.NegotiationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"opportunity_id", "supplier_id", "committed_kw", "agreed_price", "satisfaction", "dispatch_kw", "payment"}); err != nil {
		return err
	}
	for _, m := range res.Coalition {
		var dispatch, pay float64
		if res.Optimization != nil {
			dispatch = res.Optimization.Dispatch[m.SupplierID]
			pay = res.Optimization.Payments[m.SupplierID]
		}
		rec := []string{
			res.OpportunityID,
			m.SupplierID,
			formatFloat(m.CommittedKW),
			formatFloat(m.AgreedPrice),
			formatFloat(m.Satisfaction),
			formatFloat(dispatch),
			formatFloat(pay),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCoalitionTable renders the coalition of res.
func WriteCoalitionTable(w io.Writer, res model.NegotiationResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s: %s", res.OpportunityID, outcome(res)))
	t.AppendHeader(table.Row{"Supplier", "Committed kW", "Price", "Satisfaction", "Dispatch kW"})
	for _, m := range res.Coalition {
		var dispatch float64
		if res.Optimization != nil {
			dispatch = res.Optimization.Dispatch[m.SupplierID]
		}
		t.AppendRow(table.Row{m.SupplierID, m.CommittedKW, m.AgreedPrice, m.Satisfaction, dispatch})
	}
	t.AppendFooter(table.Row{"Total", fmt.Sprintf("%.3f MW", res.TotalCommittedMW), res.ClearingPrice,
		fmt.Sprintf("%.2f", res.MeanSatisfaction), fmt.Sprintf("%d rounds", res.RoundsExecuted)})
	t.Render()
}

// WriteComparisonTable renders the negotiated and centralized results side
// by side.
func WriteComparisonTable(w io.Writer, c app.Comparison) {
	neg, base := c.Negotiated, c.Baseline
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s: winner %s", c.OpportunityID, c.Winner))
	t.AppendHeader(table.Row{"Metric", "Negotiated", "Centralized", "Difference"})
	t.AppendRows([]table.Row{
		{"Success", neg.Success, base.Success, ""},
		{"Capacity MW", neg.TotalCommittedMW, base.TotalBidMW, c.CapacityDiffMW},
		{"Price", neg.ClearingPrice, base.BidPrice, c.PriceDiff},
		{"Expected profit", app.NegotiatedProfit(neg), base.ExpectedProfit, c.ProfitDiff},
		{"Satisfaction", neg.MeanSatisfaction, base.Satisfaction, c.SatisfactionDiff},
		{"Suppliers", len(neg.Coalition), len(base.Dispatch), ""},
		{"Preference violations", 0, c.Violations, ""},
	})
	t.Render()
}

func outcome(res model.NegotiationResult) string {
	if res.Success {
		return "success"
	}
	return "failed (" + res.FailureReason + ")"
}
