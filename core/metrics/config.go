package metrics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/vpp/core/factory"
)

// Config is the metrics section: the sinks fed by the event collector and an
// optional Prometheus scrape endpoint.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr, when set, serves /metrics on this address.
	PrometheusAddr string `json:"prometheus_addr"`
}

// Validate rejects sink entries without a type.
func (c Config) Validate() error {
	var errs []error
	for i, s := range c.Sinks {
		if s.Type == "" {
			errs = append(errs, fmt.Errorf("sinks[%d]: type is required", i))
		}
	}
	return errors.Join(errs...)
}
