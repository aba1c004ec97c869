package kpi

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add merges the record into the supplier's total for that day.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := s.data[r.SupplierID]
	if days == nil {
		days = map[time.Time]*Record{}
		s.data[r.SupplierID] = days
	}
	d := Day(r.Date)
	agg := days[d]
	if agg == nil {
		agg = &Record{SupplierID: r.SupplierID, Date: d}
		days[d] = agg
	}
	agg.merge(r)
	return nil
}

// Query returns the daily records between start and end inclusive, oldest
// first.
func (s *MemoryStore) Query(supplierID string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end = Day(start), Day(end)
	var res []Record
	for d, r := range s.data[supplierID] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
