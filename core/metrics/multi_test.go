package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vpp/core/factory"
)

type countingSink struct {
	negotiations int
	rounds       int
	err          error
}

func (c *countingSink) RecordNegotiation(NegotiationRecord) error {
	c.negotiations++
	return c.err
}

func (c *countingSink) RecordRound(RoundRecord) error {
	c.rounds++
	return nil
}

type plainSink struct{ n int }

func (p *plainSink) RecordNegotiation(NegotiationRecord) error {
	p.n++
	return nil
}

func TestMultiSinkForwards(t *testing.T) {
	a, b := &countingSink{}, &plainSink{}
	m := NewMultiSink(a, b)
	require.NoError(t, m.RecordNegotiation(NegotiationRecord{OpportunityID: "o"}))
	require.NoError(t, m.RecordRound(RoundRecord{Round: 1}))
	require.NoError(t, m.RecordOptimization(OptimizationRecord{}))
	assert.Equal(t, 1, a.negotiations)
	assert.Equal(t, 1, a.rounds)
	assert.Equal(t, 1, b.n)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a, b := &countingSink{err: boom}, &plainSink{}
	err := NewMultiSink(a, b).RecordNegotiation(NegotiationRecord{})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, b.n)
}

func TestNewMetricsSinkDefaultsToNop(t *testing.T) {
	s, err := NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, NopSink{}, s)
}

func TestNewMetricsSinkFromRegistry(t *testing.T) {
	require.NoError(t, RegisterMetricsSink("test-counting", func(map[string]any) (MetricsSink, error) {
		return &countingSink{}, nil
	}))
	assert.Contains(t, SinkTypes(), "test-counting")

	s, err := NewMetricsSink([]factory.ModuleConfig{{Type: "test-counting"}})
	require.NoError(t, err)
	assert.IsType(t, &countingSink{}, s)

	s, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-counting"}, {Type: "test-counting"}})
	require.NoError(t, err)
	require.IsType(t, &MultiSink{}, s)
	assert.Len(t, s.(*MultiSink).Sinks, 2)

	_, err = NewMetricsSink([]factory.ModuleConfig{{Type: "test-counting"}, {Type: "missing"}})
	assert.ErrorContains(t, err, "module 1 (missing)")
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}
