package metrics

// MultiSink fans records out to several sinks. Optional records are only
// forwarded to sinks implementing the matching recorder.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordNegotiation forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordNegotiation(rec NegotiationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordNegotiation(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordRound forwards round records.
func (m *MultiSink) RecordRound(rec RoundRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(RoundRecorder); ok {
			if err := r.RecordRound(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOptimization forwards optimizer runs.
func (m *MultiSink) RecordOptimization(rec OptimizationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(OptimizationRecorder); ok {
			if err := r.RecordOptimization(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
