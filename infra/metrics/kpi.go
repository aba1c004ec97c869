package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/core/metrics/kpi"
)

// KPISink books the dispatch of every hybrid optimization into a KPI store
// and mirrors the daily totals as gauges.
type KPISink struct {
	store      kpi.Store
	dispatched *prometheus.GaugeVec
	peak       *prometheus.GaugeVec
	events     *prometheus.GaugeVec
}

// NewKPISink creates a sink with Prometheus gauges registered on reg.
func NewKPISink(store kpi.Store, reg prometheus.Registerer) (*KPISink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := []string{"supplier_id", "day"}
	s := &KPISink{store: store}
	var err error
	if s.dispatched, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vpp_supplier_dispatched_kwh",
		Help: "Daily energy dispatched per supplier",
	}, labels)); err != nil {
		return nil, err
	}
	if s.peak, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vpp_supplier_peak_kw",
		Help: "Highest dispatch of the day per supplier",
	}, labels)); err != nil {
		return nil, err
	}
	if s.events, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vpp_supplier_dispatch_events",
		Help: "Dispatches of the day per supplier",
	}, labels)); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordNegotiation is a no-op; KPIs only follow dispatch.
func (s *KPISink) RecordNegotiation(coremetrics.NegotiationRecord) error { return nil }

// RecordOptimization books the hybrid dispatch. Baseline runs are ignored.
func (s *KPISink) RecordOptimization(rec coremetrics.OptimizationRecord) error {
	if rec.Optimizer != "hybrid" || !rec.Result.Success {
		return nil
	}
	date := rec.DeliveryTime
	if date.IsZero() {
		date = rec.Time
	}
	day := kpi.Day(date).Format("2006-01-02")
	for _, id := range sortedKeys(rec.Result.Dispatch) {
		kw := rec.Result.Dispatch[id]
		if kw <= 0 {
			continue
		}
		err := s.store.Add(kpi.Record{
			SupplierID:    id,
			Date:          date,
			DispatchedKWh: kw * rec.DurationHours,
			PeakKW:        kw,
		})
		if err != nil {
			return err
		}
		records, err := s.store.Query(id, date, date)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			r := records[0]
			s.dispatched.WithLabelValues(id, day).Set(r.DispatchedKWh)
			s.peak.WithLabelValues(id, day).Set(r.PeakKW)
			s.events.WithLabelValues(id, day).Set(float64(r.Events))
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
