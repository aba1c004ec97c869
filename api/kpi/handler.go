package kpi

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/vpp/core/metrics/kpi"
)

// NewHandler returns an HTTP handler exposing supplier KPIs via
// GET /api/kpi?supplier_id=<id>&start=<date>&end=<date>. Dates are RFC 3339
// timestamps or YYYY-MM-DD days; they default to the last 7 days.
func NewHandler(store kpi.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte("Bearer "+token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		id := q.Get("supplier_id")
		if id == "" {
			http.Error(w, "supplier_id is required", http.StatusBadRequest)
			return
		}
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -7)
		var err error
		if s := q.Get("start"); s != "" {
			if start, err = parseDate(s); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if s := q.Get("end"); s != "" {
			if end, err = parseDate(s); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		records, err := store.Query(id, start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []kpi.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}
