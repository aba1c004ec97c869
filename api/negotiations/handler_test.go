package negotiations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vpp/app"
)

func TestHandlerAuthAndLimit(t *testing.T) {
	h := app.NewHistory(10)
	h.Add(app.Comparison{OpportunityID: "a"})
	h.Add(app.Comparison{OpportunityID: "b"})
	handler := NewHandler(h, "tok")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/negotiations", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	for _, bad := range []string{"Bearer to", "Bearer tok2", "tok"} {
		req := httptest.NewRequest(http.MethodGet, "/api/negotiations", nil)
		req.Header.Set("Authorization", bad)
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, bad)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/negotiations?limit=1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var out []app.Comparison
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].OpportunityID)
}

func TestHandlerEmptyAndBadRequests(t *testing.T) {
	handler := NewHandler(app.NewHistory(2), "")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/negotiations", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/negotiations?limit=x", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/negotiations", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
