package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vpp/app"
	"github.com/kilianp07/vpp/core/model"
)

func sampleResult() model.NegotiationResult {
	return model.NegotiationResult{
		OpportunityID:    "opp-1",
		Success:          true,
		TotalCommittedMW: 0.6,
		ClearingPrice:    73.5,
		RoundsExecuted:   1,
		MeanSatisfaction: 6,
		Coalition: []model.CoalitionMember{
			{SupplierID: "a", CommittedKW: 300, AgreedPrice: 70, Satisfaction: 6},
			{SupplierID: "b", CommittedKW: 300, AgreedPrice: 70, Satisfaction: 6},
		},
		Optimization: &model.OptimizationResult{
			Dispatch: map[string]float64{"a": 300, "b": 300},
			Payments: map[string]float64{"a": 21, "b": 21},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "opportunity_id,supplier_id,committed_kw,agreed_price,satisfaction,dispatch_kw,payment", lines[0])
	assert.Equal(t, "opp-1,a,300,70,6,300,21", lines[1])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult()))
	assert.Contains(t, buf.String(), `"opportunity_id": "opp-1"`)
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer
	WriteCoalitionTable(&buf, sampleResult())
	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "opp-1: success")
	assert.Contains(t, out, "0.600 mw")

	buf.Reset()
	c := app.Compare(sampleResult(), model.OptimizationResult{Success: true, TotalBidMW: 0.7, BidPrice: 73.5,
		Violations: []model.PreferenceViolation{{SupplierID: "a"}}})
	WriteComparisonTable(&buf, c)
	out = strings.ToLower(buf.String())
	assert.Contains(t, out, "winner")
	assert.Contains(t, out, "preference violations")
}
