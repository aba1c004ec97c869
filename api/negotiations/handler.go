package negotiations

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kilianp07/vpp/app"
)

// Lister returns the most recent comparisons, newest first.
type Lister interface {
	Recent(n int) []app.Comparison
}

// NewHandler returns an HTTP handler exposing recent negotiations via
// GET /api/negotiations. The optional limit query parameter caps the number
// of entries. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHandler(l Lister, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte("Bearer "+token)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		entries := l.Recent(limit)
		if entries == nil {
			entries = []app.Comparison{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
