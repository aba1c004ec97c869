package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAggregatesPerDay(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC))
	require.NoError(t, s.Add(Record{SupplierID: "s1", Date: d.Add(time.Hour), DispatchedKWh: 300, PeakKW: 300}))
	require.NoError(t, s.Add(Record{SupplierID: "s1", Date: d.Add(5 * time.Hour), DispatchedKWh: 100, PeakKW: 50}))
	require.NoError(t, s.Add(Record{SupplierID: "s1", Date: d.AddDate(0, 0, 1), DispatchedKWh: 50, PeakKW: 25}))

	recs, err := s.Query("s1", d, d)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 400.0, recs[0].DispatchedKWh)
	assert.Equal(t, 300.0, recs[0].PeakKW)
	assert.Equal(t, 2, recs[0].Events)
	assert.True(t, recs[0].Date.Equal(d))

	recs, err = s.Query("s1", d, d.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Date.Before(recs[1].Date))

	recs, err = s.Query("unknown", d, d)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
