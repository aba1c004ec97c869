package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/core/model"
)

type lineServer struct {
	mu     sync.Mutex
	bodies []string
	srv    *httptest.Server
}

func newLineServer(t *testing.T) *lineServer {
	ls := &lineServer{}
	ls.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		ls.mu.Lock()
		ls.bodies = append(ls.bodies, strings.TrimSpace(string(data)))
		ls.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(ls.srv.Close)
	return ls
}

func (ls *lineServer) lines() []string {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]string(nil), ls.bodies...)
}

func TestInfluxSink_RecordNegotiation(t *testing.T) {
	ls := newLineServer(t)
	sink := NewInfluxSink(ls.srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := sink.RecordNegotiation(coremetrics.NegotiationRecord{
		OpportunityID: "opp-1",
		Service:       model.ServiceEnergy,
		Success:       true,
		Rounds:        1,
		Members:       7,
		CommittedMW:   2.1,
		ClearingPrice: 73.5,
		Duration:      1500 * time.Millisecond,
		Time:          now,
	})
	require.NoError(t, err)
	lines := ls.lines()
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "negotiation_result,opportunity_id=opp-1,service=ENERGY,success=true "))
	assert.Contains(t, lines[0], "clearing_price=73.5")
	assert.Contains(t, lines[0], "members=7i")
	assert.Contains(t, lines[0], "duration_ms=1500")
	assert.NotContains(t, lines[0], "failure_reason")
}

func TestInfluxSink_RecordOptimization(t *testing.T) {
	ls := newLineServer(t)
	sink := NewInfluxSink(ls.srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	err := sink.RecordOptimization(coremetrics.OptimizationRecord{
		OpportunityID: "opp-1",
		Optimizer:     "hybrid",
		Result: model.OptimizationResult{
			Success:  true,
			Status:   model.StatusOptimal,
			BidPrice: 73.5,
			Dispatch: map[string]float64{"b": 100, "a": 300},
			Payments: map[string]float64{"b": 7, "a": 21},
		},
		Time: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	lines := ls.lines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "optimization_result,"))
	assert.Contains(t, lines[1], "supplier_id=a")
	assert.Contains(t, lines[1], "payment=21")
	assert.Contains(t, lines[2], "supplier_id=b")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	_, isInflux := sink.(*InfluxSink)
	assert.False(t, isInflux, "expected NopSink on failing health check")
	assert.True(t, called, "health endpoint not called")
}
