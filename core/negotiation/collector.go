package negotiation

import (
	"context"

	"github.com/kilianp07/vpp/core/logger"
	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/internal/workpool"
)

// BidCollector queries suppliers for their bids.
type BidCollector struct {
	floorKW float64
	pool    *workpool.Pool
	log     logger.Logger
}

// NewBidCollector returns a collector that drops bids at or below floorKW.
func NewBidCollector(floorKW float64, pool *workpool.Pool, log logger.Logger) *BidCollector {
	if pool == nil {
		pool = workpool.New(0)
	}
	return &BidCollector{floorKW: floorKW, pool: pool, log: logger.OrNop(log)}
}

type queryOutcome struct {
	bid model.SupplierBid
	err error
}

// Query asks every supplier for a bid and returns all answers in supplier
// order. Failing suppliers are logged and skipped; a bid for another
// opportunity or on behalf of another supplier is a ContractViolation.
func (c *BidCollector) Query(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) ([]model.SupplierBid, error) {
	outcomes, err := workpool.Map(ctx, c.pool, suppliers, func(ctx context.Context, s supplier.Supplier) (queryOutcome, error) {
		b, err := s.QueryCapacity(ctx, opp)
		return queryOutcome{bid: b, err: err}, nil
	})
	if err != nil {
		return nil, err
	}
	bids := make([]model.SupplierBid, 0, len(outcomes))
	for i, o := range outcomes {
		id := suppliers[i].ID()
		if o.err != nil {
			queryErrors.Inc()
			c.log.Warnf("capacity query to %s failed: %v", id, o.err)
			continue
		}
		if o.bid.OpportunityID != opp.ID {
			return nil, &ContractViolation{Kind: UnknownOpportunity, SupplierID: id, ID: o.bid.OpportunityID,
				Detail: "bid does not reference opportunity " + opp.ID}
		}
		if o.bid.SupplierID != id {
			return nil, &ContractViolation{Kind: SupplierMismatch, SupplierID: id, ID: opp.ID,
				Detail: "bid submitted for supplier " + o.bid.SupplierID}
		}
		bids = append(bids, o.bid)
	}
	return bids, nil
}

// Collect queries the suppliers and keeps the eligible bids.
func (c *BidCollector) Collect(ctx context.Context, opp model.Opportunity, suppliers []supplier.Supplier) ([]model.SupplierBid, error) {
	bids, err := c.Query(ctx, opp, suppliers)
	if err != nil {
		return nil, err
	}
	return Eligible(bids, c.floorKW), nil
}

// Eligible keeps available bids offering more than floorKW, in input order.
func Eligible(bids []model.SupplierBid, floorKW float64) []model.SupplierBid {
	out := make([]model.SupplierBid, 0, len(bids))
	for _, b := range bids {
		if b.Available && b.AvailableKW > floorKW {
			out = append(out, b)
		}
	}
	return out
}
