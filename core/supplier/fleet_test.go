package supplier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFleetDeterministic(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := GenerateFleet(42, 50, start)
	b := GenerateFleet(42, 50, start)
	require.Len(t, a, 50)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, GenerateFleet(7, 50, start))
	assert.Equal(t, "prosumer_001", a[0].ID)
	for _, p := range a {
		assert.NoError(t, p.Validate())
		if p.EV != nil {
			assert.True(t, p.EV.Departure.After(start))
		}
	}
}

func TestStats(t *testing.T) {
	fleet := []Profile{
		{ID: "a", BESS: &BESS{}},
		{ID: "b", EV: &EV{}, Solar: &Solar{}},
		{ID: "c"},
	}
	s := Stats(fleet)
	assert.Equal(t, 3, s.Size)
	assert.Equal(t, 1, s.WithBESS)
	assert.Equal(t, 1, s.WithEV)
	assert.Equal(t, 1, s.WithSolar)
	assert.Equal(t, 1, s.ByAsset["BESS"])
	assert.Equal(t, 1, s.ByAsset["EV"])
	assert.Equal(t, 1, s.ByAsset["LOAD"])
}
