package negotiation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/internal/workpool"
)

func failingQuery(id string) supplier.Supplier {
	return supplier.Funcs{
		SupplierID: id,
		Query: func(context.Context, model.Opportunity) (model.SupplierBid, error) {
			return model.SupplierBid{}, errors.New("offline")
		},
	}
}

func TestCollectFiltersAndKeepsOrder(t *testing.T) {
	unavailable := bid("off", 200, 70)
	unavailable.Available = false
	suppliers := []supplier.Supplier{
		scripted(bid("b", 300, 70), accept),
		failingQuery("down"),
		scripted(bid("tiny", 0.1, 70), accept),
		scripted(unavailable, accept),
		scripted(bid("a", 50, 70), accept),
	}
	c := NewBidCollector(0.1, workpool.New(2), nil)

	raw, err := c.Query(context.Background(), opportunity(1000, 75), suppliers)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "tiny", "off", "a"}, ids(raw))

	bids, err := c.Collect(context.Background(), opportunity(1000, 75), suppliers)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(bids))
}

func TestCollectRejectsForeignBids(t *testing.T) {
	wrongSupplier := supplier.Funcs{
		SupplierID: "x",
		Query: func(_ context.Context, opp model.Opportunity) (model.SupplierBid, error) {
			b := bid("y", 300, 70)
			b.OpportunityID = opp.ID
			return b, nil
		},
	}
	wrongOpp := supplier.Funcs{
		SupplierID: "z",
		Query: func(context.Context, model.Opportunity) (model.SupplierBid, error) {
			b := bid("z", 300, 70)
			b.OpportunityID = "other"
			return b, nil
		},
	}
	c := NewBidCollector(0.1, nil, nil)

	_, err := c.Collect(context.Background(), opportunity(1000, 75), []supplier.Supplier{wrongSupplier})
	var cv *ContractViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, SupplierMismatch, cv.Kind)

	_, err = c.Collect(context.Background(), opportunity(1000, 75), []supplier.Supplier{wrongOpp})
	require.ErrorIs(t, err, ErrContractViolation)
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, UnknownOpportunity, cv.Kind)
}
