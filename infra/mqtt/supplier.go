package mqtt

import (
	"context"
	"fmt"

	"github.com/kilianp07/vpp/core/model"
	coremqtt "github.com/kilianp07/vpp/core/mqtt"
	"github.com/kilianp07/vpp/core/supplier"
)

// RemoteSupplier is a supplier reached through a Requester.
type RemoteSupplier struct {
	id  string
	req coremqtt.Requester
}

// NewRemoteSupplier returns the supplier with the given id behind req.
func NewRemoteSupplier(id string, req coremqtt.Requester) *RemoteSupplier {
	return &RemoteSupplier{id: id, req: req}
}

// RemoteSuppliers builds one RemoteSupplier per id sharing the same requester.
func RemoteSuppliers(ids []string, req coremqtt.Requester) []supplier.Supplier {
	out := make([]supplier.Supplier, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewRemoteSupplier(id, req))
	}
	return out
}

func (r *RemoteSupplier) ID() string { return r.id }

func (r *RemoteSupplier) QueryCapacity(ctx context.Context, opp model.Opportunity) (model.SupplierBid, error) {
	reply, err := r.call(ctx, coremqtt.Envelope{Kind: coremqtt.KindQuery, SupplierID: r.id, Opportunity: &opp})
	if err != nil {
		return model.SupplierBid{}, err
	}
	if reply.Bid == nil {
		return model.SupplierBid{}, fmt.Errorf("%s: reply carries no bid", r.id)
	}
	return *reply.Bid, nil
}

func (r *RemoteSupplier) Decide(ctx context.Context, offer model.CounterOffer) (model.SupplierResponse, error) {
	reply, err := r.call(ctx, coremqtt.Envelope{Kind: coremqtt.KindOffer, SupplierID: r.id, Offer: &offer})
	if err != nil {
		return model.SupplierResponse{}, err
	}
	if reply.Response == nil {
		return model.SupplierResponse{}, fmt.Errorf("%s: reply carries no response", r.id)
	}
	return *reply.Response, nil
}

func (r *RemoteSupplier) call(ctx context.Context, env coremqtt.Envelope) (coremqtt.Envelope, error) {
	reply, err := r.req.Request(ctx, env)
	if err != nil {
		return reply, err
	}
	if err := reply.Err(); err != nil {
		return reply, fmt.Errorf("%s: %w", r.id, err)
	}
	return reply, nil
}
