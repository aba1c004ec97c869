package supplier

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/kilianp07/vpp/core/model"
)

// Response confidences reported by the reference model.
const (
	acceptConfidence = 0.8
	rejectConfidence = 0.6
)

// Prosumer is the reference supplier model. It remembers the bid it gave for
// each opportunity so that Decide can check capacity feasibility.
type Prosumer struct {
	profile Profile

	mu   sync.Mutex
	bids map[string]model.SupplierBid
}

// NewProsumer wraps a profile.
func NewProsumer(p Profile) *Prosumer {
	return &Prosumer{profile: p, bids: make(map[string]model.SupplierBid)}
}

// Prosumers wraps every profile and returns them as Suppliers.
func Prosumers(profiles []Profile) []Supplier {
	out := make([]Supplier, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewProsumer(p))
	}
	return out
}

func (p *Prosumer) ID() string { return p.profile.ID }

// Profile returns the static description of the prosumer.
func (p *Prosumer) Profile() Profile { return p.profile }

// QueryCapacity builds the prosumer's bid for the opportunity.
func (p *Prosumer) QueryCapacity(_ context.Context, opp model.Opportunity) (model.SupplierBid, error) {
	pr := p.profile
	bid := model.SupplierBid{
		SupplierID:    pr.ID,
		OpportunityID: opp.ID,
		Round:         1,
		AssetType:     pr.Asset(),
		Preferences: model.Preferences{
			BackupHours:       pr.BackupHours,
			CompensationFloor: pr.CompensationFloor,
			RiskTolerance:     pr.RiskTolerance(),
		},
	}
	if pr.EV != nil {
		bid.Preferences.EVChargeNeededKWh = pr.EV.ChargeNeededKWh()
		bid.Preferences.ChargeDeadline = pr.EV.Departure
	}
	if pr.willingness() <= availabilityThreshold {
		p.remember(bid)
		return bid, nil
	}
	avail, reserve := pr.capacity(opp.Service)
	bid.Available = avail > 0
	bid.AvailableKW = avail
	bid.MaxCapacityKW = avail
	bid.MinCapacityKW = math.Min(0.5, avail)
	if pr.BlockKW > 0 {
		bid.MinCapacityKW = math.Min(pr.BlockKW, avail)
	}
	bid.MinPrice = pr.minPrice(opp.ReferencePrice)
	bid.Preferences.BackupReserveKW = reserve
	p.remember(bid)
	return bid, nil
}

func (p *Prosumer) remember(b model.SupplierBid) {
	p.mu.Lock()
	p.bids[b.OpportunityID] = b
	p.mu.Unlock()
}

// threshold is the lowest total price the prosumer accepts.
func threshold(minPrice float64, risk model.RiskTolerance) float64 {
	switch risk {
	case model.RiskLow:
		return minPrice * 1.1
	case model.RiskHigh:
		return minPrice * 0.95
	}
	return minPrice
}

// Decide accepts an offer when price plus bonus reaches the risk-adjusted
// threshold and some capacity can be committed. Rejections carry a counter at
// the threshold price.
func (p *Prosumer) Decide(_ context.Context, offer model.CounterOffer) (model.SupplierResponse, error) {
	p.mu.Lock()
	bid, ok := p.bids[offer.OpportunityID]
	p.mu.Unlock()
	if !ok {
		return model.SupplierResponse{}, fmt.Errorf("prosumer %s: no bid for opportunity %s", p.profile.ID, offer.OpportunityID)
	}
	resp := model.SupplierResponse{
		ID:         "resp-" + offer.ID,
		OfferID:    offer.ID,
		SupplierID: p.profile.ID,
		Confidence: rejectConfidence,
	}
	committed := math.Min(offer.RequestedKW, bid.AvailableKW)
	if bid.MinCapacityKW > committed {
		committed = math.Min(bid.MinCapacityKW, bid.AvailableKW)
	}
	if committed <= 0 {
		resp.RejectionReason = "no capacity available"
		return resp, nil
	}
	limit := threshold(bid.MinPrice, bid.Preferences.RiskTolerance)
	resp.CounterCapacityKW = model.Float(committed)
	if offer.Price+offer.Bonus >= limit {
		resp.Accepted = true
		resp.Confidence = acceptConfidence
		return resp, nil
	}
	resp.RejectionReason = fmt.Sprintf("offered %.2f below threshold %.2f", offer.Price+offer.Bonus, limit)
	resp.CounterPrice = model.Float(math.Round(limit*100) / 100)
	return resp, nil
}
