package negotiation

import (
	"context"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/internal/workpool"
)

// ResponseCollector delivers counter-offers and gathers the decisions.
type ResponseCollector struct {
	pool *workpool.Pool
	log  logger.Logger
}

// NewResponseCollector returns a collector running on pool.
func NewResponseCollector(pool *workpool.Pool, log logger.Logger) *ResponseCollector {
	if pool == nil {
		pool = workpool.New(0)
	}
	return &ResponseCollector{pool: pool, log: logger.OrNop(log)}
}

// Collect sends every offer to its supplier and returns the responses in offer
// order. A supplier error is turned into a rejection. Responses that do not
// answer the offer they were asked for are contract violations.
func (c *ResponseCollector) Collect(ctx context.Context, offers []model.CounterOffer, suppliers map[string]supplier.Supplier) ([]model.SupplierResponse, error) {
	known := make(map[string]model.CounterOffer, len(offers))
	for _, o := range offers {
		if _, ok := suppliers[o.Target()]; !ok {
			return nil, &ContractViolation{Kind: UnknownSupplier, SupplierID: o.Target(), ID: o.ID,
				Detail: "offer addressed to a supplier that was never queried"}
		}
		known[o.ID] = o
	}

	responses, err := workpool.Map(ctx, c.pool, offers, func(ctx context.Context, o model.CounterOffer) (model.SupplierResponse, error) {
		r, err := suppliers[o.Target()].Decide(ctx, o)
		if err != nil {
			decideErrors.Inc()
			c.log.Warnf("decision from %s on offer %s failed: %v", o.Target(), o.ID, err)
			return model.SupplierResponse{
				ID:              "error-" + o.ID,
				OfferID:         o.ID,
				SupplierID:      o.Target(),
				RejectionReason: "supplier error: " + err.Error(),
			}, nil
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	for i, r := range responses {
		o := offers[i]
		if _, ok := known[r.OfferID]; !ok {
			return nil, &ContractViolation{Kind: UnknownOffer, SupplierID: r.SupplierID, ID: r.OfferID,
				Detail: "response references an offer that was never sent"}
		}
		if r.OfferID != o.ID {
			return nil, &ContractViolation{Kind: OfferMismatch, SupplierID: r.SupplierID, ID: r.OfferID,
				Detail: "response answers offer " + r.OfferID + " instead of " + o.ID}
		}
		if r.SupplierID != o.Target() {
			return nil, &ContractViolation{Kind: SupplierMismatch, SupplierID: r.SupplierID, ID: o.ID,
				Detail: "offer was addressed to " + o.Target()}
		}
	}
	return responses, nil
}
