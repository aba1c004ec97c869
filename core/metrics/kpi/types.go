// Package kpi aggregates the energy each supplier was dispatched for, per
// delivery day.
package kpi

import "time"

// Record aggregates the dispatch of one supplier for one day.
type Record struct {
	SupplierID    string    `json:"supplier_id"`
	Date          time.Time `json:"date"`
	DispatchedKWh float64   `json:"dispatched_kwh"`
	PeakKW        float64   `json:"peak_kw"`
	Events        int       `json:"events"`
}

// merge folds r into the aggregate.
func (a *Record) merge(r Record) {
	a.DispatchedKWh += r.DispatchedKWh
	a.PeakKW = max(a.PeakKW, r.PeakKW)
	a.Events++
}
