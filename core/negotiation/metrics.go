package negotiation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	roundsExecuted *prometheus.HistogramVec
	offersSent     prometheus.Counter
	responsesTotal *prometheus.CounterVec
	resultsTotal   *prometheus.CounterVec
	queryErrors    prometheus.Counter
	decideErrors   prometheus.Counter
)

func newCollectors() (*prometheus.HistogramVec, prometheus.Counter, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter) {
	rounds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vpp_negotiation_rounds",
			Help:    "Offer rounds executed per negotiation cycle",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
		},
		[]string{"service"},
	)
	offers := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vpp_negotiation_offers_total",
		Help: "Counter-offers sent to suppliers",
	})
	responses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpp_negotiation_responses_total",
			Help: "Supplier responses by outcome",
		},
		[]string{"outcome"},
	)
	results := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpp_negotiation_results_total",
			Help: "Negotiation cycles by outcome",
		},
		[]string{"outcome"},
	)
	qerr := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vpp_negotiation_query_errors_total",
		Help: "Failed supplier capacity queries",
	})
	derr := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vpp_negotiation_decide_errors_total",
		Help: "Failed supplier decisions",
	})
	return rounds, offers, responses, results, qerr, derr
}

func init() {
	roundsExecuted, offersSent, responsesTotal, resultsTotal, queryErrors, decideErrors = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers negotiation metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(roundsExecuted, offersSent, responsesTotal, resultsTotal, queryErrors, decideErrors)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	roundsExecuted, offersSent, responsesTotal, resultsTotal, queryErrors, decideErrors = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
