package events

import (
	"time"

	"github.com/kilianp07/vpp/core/model"
)

// Event is implemented by every event published on the negotiation bus.
type Event interface {
	EventName() string
}

// RoundCompleted is published after the responses of a round are collected.
type RoundCompleted struct {
	OpportunityID string
	Round         int
	Offers        int
	Accepted      int
	Countered     int
	Rejected      int
	CommittedKW   float64
	Time          time.Time
}

func (RoundCompleted) EventName() string { return "round_completed" }

// NegotiationFinished carries the final result of a cycle.
type NegotiationFinished struct {
	Service  model.ServiceKind
	Result   model.NegotiationResult
	Duration time.Duration
	Time     time.Time
}

func (NegotiationFinished) EventName() string { return "negotiation_finished" }

// OptimizationFinished is published by the callers of the optimizers.
// Optimizer is "hybrid" or "centralized".
type OptimizationFinished struct {
	OpportunityID string
	Optimizer     string
	DeliveryTime  time.Time
	DurationHours float64
	Result        model.OptimizationResult
	Time          time.Time
}

func (OptimizationFinished) EventName() string { return "optimization_finished" }
