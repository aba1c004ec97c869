// Package supplier defines the contract between the negotiation core and the
// supplier-side asset models, together with a reference prosumer model used
// by the CLI, the scenario suite and the MQTT responder.
package supplier

import (
	"context"

	"github.com/kilianp07/vpp/core/model"
)

// Supplier is the external asset/preference model behind one supplier. Both
// methods must behave as pure functions of the supplier state and their
// argument; the negotiation core treats them as opaque.
type Supplier interface {
	ID() string
	// QueryCapacity answers a capacity query for the opportunity.
	QueryCapacity(ctx context.Context, opp model.Opportunity) (model.SupplierBid, error)
	// Decide resolves a counter-offer addressed to this supplier.
	Decide(ctx context.Context, offer model.CounterOffer) (model.SupplierResponse, error)
}

// Funcs adapts plain functions to the Supplier interface.
type Funcs struct {
	SupplierID string
	Query      func(ctx context.Context, opp model.Opportunity) (model.SupplierBid, error)
	Respond    func(ctx context.Context, offer model.CounterOffer) (model.SupplierResponse, error)
}

func (f Funcs) ID() string { return f.SupplierID }

func (f Funcs) QueryCapacity(ctx context.Context, opp model.Opportunity) (model.SupplierBid, error) {
	return f.Query(ctx, opp)
}

func (f Funcs) Decide(ctx context.Context, offer model.CounterOffer) (model.SupplierResponse, error) {
	return f.Respond(ctx, offer)
}

// Index maps suppliers by id. Later duplicates are ignored.
func Index(suppliers []Supplier) map[string]Supplier {
	m := make(map[string]Supplier, len(suppliers))
	for _, s := range suppliers {
		if _, ok := m[s.ID()]; !ok {
			m[s.ID()] = s
		}
	}
	return m
}
