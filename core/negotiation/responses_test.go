package negotiation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
)

func offersFor(suppliers ...string) []model.CounterOffer {
	out := make([]model.CounterOffer, len(suppliers))
	for i, id := range suppliers {
		out[i] = model.CounterOffer{ID: "offer-" + id, OpportunityID: "opp-1", SupplierIDs: []string{id}, Price: 70, RequestedKW: 100, Round: 1}
	}
	return out
}

func TestResponsesInOfferOrder(t *testing.T) {
	index := supplier.Index([]supplier.Supplier{
		scripted(bid("a", 100, 70), accept),
		scripted(bid("b", 100, 70), func(o model.CounterOffer) model.SupplierResponse {
			return model.SupplierResponse{ID: "r", OfferID: o.ID, SupplierID: "b", RejectionReason: "no"}
		}),
	})
	res, err := NewResponseCollector(nil, nil).Collect(context.Background(), offersFor("b", "a"), index)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].SupplierID)
	assert.False(t, res[0].Accepted)
	assert.Equal(t, "a", res[1].SupplierID)
	assert.True(t, res[1].Accepted)
}

func TestResponsesSupplierErrorBecomesRejection(t *testing.T) {
	broken := supplier.Funcs{
		SupplierID: "a",
		Respond: func(context.Context, model.CounterOffer) (model.SupplierResponse, error) {
			return model.SupplierResponse{}, errors.New("timeout")
		},
	}
	res, err := NewResponseCollector(nil, nil).Collect(context.Background(), offersFor("a"), supplier.Index([]supplier.Supplier{broken}))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "error-offer-a", res[0].ID)
	assert.False(t, res[0].Accepted)
	assert.False(t, res[0].IsCounter())
	assert.True(t, strings.HasPrefix(res[0].RejectionReason, "supplier error"))
}

func TestResponsesContractViolations(t *testing.T) {
	cases := map[string]struct {
		respond func(model.CounterOffer) model.SupplierResponse
		offers  []model.CounterOffer
		kind    ViolationKind
	}{
		"unknown offer": {
			respond: func(model.CounterOffer) model.SupplierResponse {
				return model.SupplierResponse{OfferID: "bogus", SupplierID: "a", Accepted: true}
			},
			offers: offersFor("a"),
			kind:   UnknownOffer,
		},
		"wrong supplier": {
			respond: func(o model.CounterOffer) model.SupplierResponse {
				return model.SupplierResponse{OfferID: o.ID, SupplierID: "mallory", Accepted: true}
			},
			offers: offersFor("a"),
			kind:   SupplierMismatch,
		},
		"unknown supplier": {
			respond: accept,
			offers:  offersFor("ghost"),
			kind:    UnknownSupplier,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			index := supplier.Index([]supplier.Supplier{scripted(bid("a", 100, 70), tc.respond)})
			_, err := NewResponseCollector(nil, nil).Collect(context.Background(), tc.offers, index)
			require.ErrorIs(t, err, ErrContractViolation)
			var cv *ContractViolation
			require.ErrorAs(t, err, &cv)
			assert.Equal(t, tc.kind, cv.Kind)
		})
	}
}

func TestResponsesOfferMismatch(t *testing.T) {
	offers := offersFor("a", "b")
	// a answers b's offer
	index := supplier.Index([]supplier.Supplier{
		scripted(bid("a", 100, 70), func(model.CounterOffer) model.SupplierResponse {
			return model.SupplierResponse{OfferID: "offer-b", SupplierID: "a", Accepted: true}
		}),
		scripted(bid("b", 100, 70), accept),
	})
	_, err := NewResponseCollector(nil, nil).Collect(context.Background(), offers, index)
	var cv *ContractViolation
	require.ErrorAs(t, err, &cv)
	assert.Equal(t, OfferMismatch, cv.Kind)
}
