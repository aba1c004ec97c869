package optimize

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/vpp/core/model"
)

var (
	solveDuration *prometheus.HistogramVec
	solvesTotal   *prometheus.CounterVec
	fallbackTotal *prometheus.CounterVec
)

func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vpp_optimizer_solve_seconds",
			Help:    "Time spent in the LP solver",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"optimizer"},
	)
	solves := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpp_optimizer_solves_total",
			Help: "LP solves by optimizer and solver status",
		},
		[]string{"optimizer", "status"},
	)
	fb := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpp_optimizer_fallback_total",
			Help: "Optimizations that used the closed-form fallback",
		},
		[]string{"optimizer"},
	)
	return dur, solves, fb
}

func init() {
	solveDuration, solvesTotal, fallbackTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers the optimizer metrics on reg, or on the
// default registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveDuration, solvesTotal, fallbackTotal)
}

// ResetMetrics recreates the collectors and registers them on reg if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveDuration, solvesTotal, fallbackTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeSolve(optimizer string, status model.SolverStatus, d time.Duration) {
	solveDuration.WithLabelValues(optimizer).Observe(d.Seconds())
	solvesTotal.WithLabelValues(optimizer, string(status)).Inc()
}
