package negotiation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
)

func withSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestNegotiateTracesCycle(t *testing.T) {
	rec := withSpanRecorder(t)
	e := newEngine(t, Config{})
	_, err := e.Negotiate(context.Background(), opportunity(2000, 75), blockFleet(10, 300, 70))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Engine.Negotiate", spans[0].Name())
	attrs := spanAttrs(spans[0])
	assert.True(t, attrs["vpp.success"].AsBool())
	assert.Equal(t, int64(7), attrs["vpp.members"].AsInt64())
	assert.Equal(t, int64(10), attrs["vpp.suppliers"].AsInt64())
}

func TestNegotiateTracesFailures(t *testing.T) {
	rec := withSpanRecorder(t)
	e := newEngine(t, Config{})
	_, err := e.Negotiate(context.Background(), opportunity(2000, 75), nil)
	require.NoError(t, err)

	liar := func(o model.CounterOffer) model.SupplierResponse {
		return model.SupplierResponse{OfferID: "made-up", SupplierID: o.Target(), Accepted: true}
	}
	suppliers := []supplier.Supplier{scripted(bid("a", 600, 70), accept), scripted(bid("b", 600, 70), liar)}
	_, err = e.Negotiate(context.Background(), opportunity(1000, 100), suppliers)
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, model.ReasonNoBids, spanAttrs(spans[0])["vpp.failure_reason"].AsString())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
