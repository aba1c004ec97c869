package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/vpp/core/metrics"
)

// PromSink records negotiation outcomes in Prometheus metrics.
type PromSink struct {
	negotiations *prometheus.CounterVec
	committed    *prometheus.GaugeVec
	price        *prometheus.GaugeVec
	satisfaction *prometheus.GaugeVec
	duration     prometheus.Histogram
	responses    *prometheus.CounterVec
	profit       *prometheus.GaugeVec
	violations   *prometheus.CounterVec
}

// NewPromSink registers negotiation metrics on the default Prometheus
// registerer. The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing an already registered collector of the same
// description.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpp_negotiations_total",
			Help: "Negotiation cycles by service and outcome",
		}, []string{"service", "outcome"}),
		committed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vpp_negotiation_committed_mw",
			Help: "Capacity committed by the last coalition",
		}, []string{"service"}),
		price: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vpp_negotiation_clearing_price",
			Help: "Clearing price of the last successful negotiation",
		}, []string{"service"}),
		satisfaction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vpp_negotiation_mean_satisfaction",
			Help: "Mean member satisfaction of the last coalition",
		}, []string{"service"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vpp_negotiation_duration_seconds",
			Help:    "Wall time of a negotiation cycle",
			Buckets: prometheus.DefBuckets,
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpp_round_responses_total",
			Help: "Responses per round outcome",
		}, []string{"outcome"}),
		profit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vpp_optimization_expected_profit",
			Help: "Expected profit of the last optimization",
		}, []string{"optimizer", "fallback"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vpp_preference_violations_total",
			Help: "Preference violations produced by an optimizer",
		}, []string{"optimizer", "kind"}),
	}
	var err error
	if s.negotiations, err = register(reg, s.negotiations); err != nil {
		return nil, err
	}
	if s.committed, err = register(reg, s.committed); err != nil {
		return nil, err
	}
	if s.price, err = register(reg, s.price); err != nil {
		return nil, err
	}
	if s.satisfaction, err = register(reg, s.satisfaction); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.responses, err = register(reg, s.responses); err != nil {
		return nil, err
	}
	if s.profit, err = register(reg, s.profit); err != nil {
		return nil, err
	}
	if s.violations, err = register(reg, s.violations); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordNegotiation updates the cycle counters and gauges.
func (s *PromSink) RecordNegotiation(rec coremetrics.NegotiationRecord) error {
	service := string(rec.Service)
	outcome := "success"
	if !rec.Success {
		outcome = rec.FailureReason
	}
	s.negotiations.WithLabelValues(service, outcome).Inc()
	s.duration.Observe(rec.Duration.Seconds())
	s.committed.WithLabelValues(service).Set(rec.CommittedMW)
	if rec.Success {
		s.price.WithLabelValues(service).Set(rec.ClearingPrice)
		s.satisfaction.WithLabelValues(service).Set(rec.MeanSatisfaction)
	}
	return nil
}

// RecordRound counts the responses of an offer round.
func (s *PromSink) RecordRound(rec coremetrics.RoundRecord) error {
	s.responses.WithLabelValues("accepted").Add(float64(rec.Accepted))
	s.responses.WithLabelValues("countered").Add(float64(rec.Countered))
	s.responses.WithLabelValues("rejected").Add(float64(rec.Rejected))
	return nil
}

// RecordOptimization records profit and violations of an optimizer run.
func (s *PromSink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	s.profit.WithLabelValues(rec.Optimizer, strconv.FormatBool(rec.Result.UsedFallback)).Set(rec.Result.ExpectedProfit)
	for _, v := range rec.Result.Violations {
		s.violations.WithLabelValues(rec.Optimizer, string(v.Kind)).Inc()
	}
	return nil
}
