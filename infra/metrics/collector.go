package metrics

import (
	"context"

	"github.com/kilianp07/vpp/core/events"
	coremetrics "github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/infra/logger"
	"github.com/kilianp07/vpp/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events. It returns a channel closed once the collector has stopped, which
// happens when the context is cancelled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := Record(sink, ev); err != nil {
					log.Warnf("record %s: %v", ev.EventName(), err)
				}
			}
		}
	}()
	return done
}

// Record converts a bus event into the matching sink record. Events the sink
// has no recorder for are ignored.
func Record(sink coremetrics.MetricsSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.NegotiationFinished:
		r := e.Result
		return sink.RecordNegotiation(coremetrics.NegotiationRecord{
			OpportunityID:    r.OpportunityID,
			Service:          e.Service,
			Success:          r.Success,
			FailureReason:    r.FailureReason,
			Rounds:           r.RoundsExecuted,
			Members:          len(r.Coalition),
			CommittedMW:      r.TotalCommittedMW,
			ClearingPrice:    r.ClearingPrice,
			MeanSatisfaction: r.MeanSatisfaction,
			Duration:         e.Duration,
			Time:             e.Time,
		})
	case events.RoundCompleted:
		if rr, ok := sink.(coremetrics.RoundRecorder); ok {
			return rr.RecordRound(coremetrics.RoundRecord{
				OpportunityID: e.OpportunityID,
				Round:         e.Round,
				Offers:        e.Offers,
				Accepted:      e.Accepted,
				Countered:     e.Countered,
				Rejected:      e.Rejected,
				CommittedKW:   e.CommittedKW,
				Time:          e.Time,
			})
		}
	case events.OptimizationFinished:
		if or, ok := sink.(coremetrics.OptimizationRecorder); ok {
			return or.RecordOptimization(coremetrics.OptimizationRecord{
				OpportunityID: e.OpportunityID,
				Optimizer:     e.Optimizer,
				DeliveryTime:  e.DeliveryTime,
				DurationHours: e.DurationHours,
				Result:        e.Result,
				Time:          e.Time,
			})
		}
	}
	return nil
}
