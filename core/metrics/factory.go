package metrics

import (
	"fmt"

	"github.com/kilianp07/vpp/core/factory"
)

var sinks = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink makes a sink type available to the metrics.sinks
// configuration section.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinks.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinks.Types() }

// NewMetricsSink builds the configured sinks. No configuration yields a
// NopSink and several yield a MultiSink in configuration order.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	built, err := sinks.CreateAll(cfgs)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	switch len(built) {
	case 0:
		return NopSink{}, nil
	case 1:
		return built[0], nil
	default:
		return NewMultiSink(built...), nil
	}
}
