package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOpportunity() Opportunity {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return Opportunity{
		ID:             "opp-1",
		Service:        ServiceEnergy,
		DeliveryTime:   now.Add(2 * time.Hour),
		DurationHours:  1,
		RequiredKW:     2000,
		ReferencePrice: 75,
		Deadline:       now.Add(time.Hour),
	}
}

func TestOpportunityValidate(t *testing.T) {
	require.NoError(t, validOpportunity().Validate())

	o := validOpportunity()
	o.ID = ""
	o.RequiredKW = 0
	o.Service = "CAPACITY"
	err := o.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opportunity id is empty")
	assert.Contains(t, err.Error(), "required_kw")
	assert.Contains(t, err.Error(), "invalid service kind")
}

func TestParseServiceKind(t *testing.T) {
	k, err := ParseServiceKind("spinning_reserve")
	require.NoError(t, err)
	assert.Equal(t, ServiceSpinningReserve, k)
	_, err = ParseServiceKind("frequency")
	assert.Error(t, err)
}

func TestRevisedLeavesOriginalUntouched(t *testing.T) {
	b := SupplierBid{SupplierID: "s1", Round: 1, MinPrice: 90, AvailableKW: 50, MaxCapacityKW: 60}
	nb := b.Revised(2, 85, 40)
	assert.Equal(t, 1, b.Round)
	assert.Equal(t, 90.0, b.MinPrice)
	assert.Equal(t, 50.0, b.AvailableKW)
	assert.Equal(t, 2, nb.Round)
	assert.Equal(t, 85.0, nb.MinPrice)
	assert.Equal(t, 40.0, nb.AvailableKW)
	assert.Equal(t, 60.0, nb.MaxCapacityKW)

	kept := b.Revised(2, 80, 0)
	assert.Equal(t, 50.0, kept.AvailableKW)
}

func TestResponseCapacity(t *testing.T) {
	r := SupplierResponse{Accepted: true}
	assert.Equal(t, 120.0, r.CapacityKW(120))
	r.CounterCapacityKW = Float(80)
	assert.Equal(t, 80.0, r.CapacityKW(120))
	assert.False(t, r.IsCounter())

	c := SupplierResponse{CounterPrice: Float(95)}
	assert.True(t, c.IsCounter())
}

func TestTotalCommittedKW(t *testing.T) {
	members := []CoalitionMember{{CommittedKW: 300}, {CommittedKW: 240.5}}
	assert.InDelta(t, 540.5, TotalCommittedKW(members), 1e-9)
	assert.Equal(t, 0.0, TotalCommittedKW(nil))
}
