package metrics

import (
	"time"

	"github.com/kilianp07/vpp/core/model"
)

// NegotiationRecord summarizes one negotiation cycle.
type NegotiationRecord struct {
	OpportunityID    string
	Service          model.ServiceKind
	Success          bool
	FailureReason    string
	Rounds           int
	Members          int
	CommittedMW      float64
	ClearingPrice    float64
	MeanSatisfaction float64
	Duration         time.Duration
	Time             time.Time
}

// MetricsSink records negotiation outcomes for observability purposes.
type MetricsSink interface {
	RecordNegotiation(rec NegotiationRecord) error
}

// RoundRecord captures the outcome of one offer round.
type RoundRecord struct {
	OpportunityID string
	Round         int
	Offers        int
	Accepted      int
	Countered     int
	Rejected      int
	CommittedKW   float64
	Time          time.Time
}

// RoundRecorder records offer rounds.
type RoundRecorder interface {
	RecordRound(rec RoundRecord) error
}

// OptimizationRecord captures an optimizer run. Optimizer is "hybrid" or
// "centralized".
type OptimizationRecord struct {
	OpportunityID string
	Optimizer     string
	DeliveryTime  time.Time
	DurationHours float64
	Result        model.OptimizationResult
	Time          time.Time
}

// OptimizationRecorder records optimizer runs.
type OptimizationRecorder interface {
	RecordOptimization(rec OptimizationRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordNegotiation(NegotiationRecord) error   { return nil }
func (NopSink) RecordRound(RoundRecord) error               { return nil }
func (NopSink) RecordOptimization(OptimizationRecord) error { return nil }
