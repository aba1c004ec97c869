package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func opportunity(requiredKW, ref float64) model.Opportunity {
	return model.Opportunity{
		ID:             "opp-1",
		Service:        model.ServiceEnergy,
		DeliveryTime:   testStart.Add(2 * time.Hour),
		DurationHours:  1,
		RequiredKW:     requiredKW,
		ReferencePrice: ref,
		Deadline:       testStart.Add(time.Hour),
	}
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func blockFleet(n int, kw, price float64) []supplier.Supplier {
	profiles := make([]supplier.Profile, n)
	for i := range profiles {
		profiles[i] = supplier.Profile{
			ID:         fmt.Sprintf("sup-%d", i),
			AssetType:  model.AssetBESS,
			CapacityKW: kw,
			BlockKW:    kw,
			MinPrice:   price,
			Risk:       model.RiskMedium,
		}
	}
	return supplier.Prosumers(profiles)
}

func bid(id string, kw, price float64) model.SupplierBid {
	return model.SupplierBid{
		SupplierID:    id,
		OpportunityID: "opp-1",
		Round:         1,
		Available:     true,
		AvailableKW:   kw,
		MinCapacityKW: 0.5,
		MaxCapacityKW: kw,
		MinPrice:      price,
		AssetType:     model.AssetBESS,
	}
}

// scripted answers queries with a fixed bid and delegates decisions to fn.
func scripted(b model.SupplierBid, fn func(model.CounterOffer) model.SupplierResponse) supplier.Supplier {
	return supplier.Funcs{
		SupplierID: b.SupplierID,
		Query: func(_ context.Context, opp model.Opportunity) (model.SupplierBid, error) {
			nb := b
			nb.OpportunityID = opp.ID
			return nb, nil
		},
		Respond: func(_ context.Context, o model.CounterOffer) (model.SupplierResponse, error) {
			return fn(o), nil
		},
	}
}

func accept(o model.CounterOffer) model.SupplierResponse {
	return model.SupplierResponse{ID: "r-" + o.ID, OfferID: o.ID, SupplierID: o.Target(), Accepted: true, Confidence: 0.9}
}
