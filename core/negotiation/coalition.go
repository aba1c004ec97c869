package negotiation

import (
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/vpp/core/model"
)

// Coalition admission constants.
const (
	redundancyRatio     = 1.5  // committed capacity never exceeds 1.5 × required
	foldInShare         = 0.95 // never-countered bids at or below 0.95 × ref join as is
	maxPriceRatio       = 2.0  // agreed prices are capped at 2 × ref
	neutralSatisfaction = 6.0
	eps                 = 1e-9
)

// Candidate is an accepted response together with the offer it answers and
// the bids it derives from.
type Candidate struct {
	Offer    model.CounterOffer
	Response model.SupplierResponse
	// Bid is the bid the offer was generated from; Original is the supplier's
	// first bid of the cycle.
	Bid      model.SupplierBid
	Original model.SupplierBid
}

// Formation is the admitted coalition and the reasons behind each decision.
type Formation struct {
	Members   []model.CoalitionMember
	Decisions []string
}

// CoalitionFormer selects the committed supplier set.
type CoalitionFormer struct {
	intervalMinutes int
}

// NewCoalitionFormer returns a former producing schedules with the given
// sub-interval length.
func NewCoalitionFormer(intervalMinutes int) *CoalitionFormer {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	return &CoalitionFormer{intervalMinutes: intervalMinutes}
}

type scoredCandidate struct {
	c        Candidate
	price    float64
	capacity float64
	score    float64
}

// Form admits accepted responses by descending score up to the redundancy
// ceiling, then tops up with never-countered initial bids priced at or below
// 0.95 × ref while the requirement is not yet covered. Form has no side
// effects: the same input always yields the same coalition.
func (f *CoalitionFormer) Form(candidates []Candidate, initial []model.SupplierBid, countered map[string]bool, opp model.Opportunity) Formation {
	ref := opp.ReferencePrice
	ceiling := redundancyRatio * opp.RequiredKW
	var out Formation
	note := func(format string, args ...any) {
		out.Decisions = append(out.Decisions, fmt.Sprintf(format, args...))
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Response.Accepted {
			continue
		}
		if c.Bid.MinPrice > maxPriceRatio*ref {
			note("skip %s: minimum price %.2f above %.2f", c.Offer.Target(), c.Bid.MinPrice, maxPriceRatio*ref)
			continue
		}
		price := math.Min(math.Max(c.Offer.Price+c.Offer.Bonus, c.Bid.MinPrice), maxPriceRatio*ref)
		capKW := math.Max(0, math.Min(c.Response.CapacityKW(c.Offer.RequestedKW), c.Original.MaxCapacityKW))
		scored = append(scored, scoredCandidate{
			c:        c,
			price:    price,
			capacity: capKW,
			score:    1/math.Max(price, 1) + capKW/1000 + c.Response.Confidence,
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	present := make(map[string]bool)
	var total float64
	admit := func(id string, capKW, minKW, price, origMin float64, asset model.AssetType) bool {
		headroom := ceiling - total
		if headroom <= eps {
			note("skip %s: redundancy ceiling %.2f kW reached", id, ceiling)
			return false
		}
		commit := math.Min(capKW, headroom)
		if commit <= eps {
			note("skip %s: no capacity committed", id)
			return false
		}
		if commit+eps < minKW {
			note("skip %s: headroom %.2f kW below minimum block %.2f kW", id, commit, minKW)
			return false
		}
		phase := "coverage"
		if total+eps >= opp.RequiredKW {
			phase = "redundancy"
		}
		out.Members = append(out.Members, model.CoalitionMember{
			SupplierID:   id,
			CommittedKW:  commit,
			AgreedPrice:  price,
			Schedule:     f.schedule(opp.DurationHours, commit),
			AssetType:    asset,
			Satisfaction: satisfaction(price, origMin),
		})
		present[id] = true
		total += commit
		note("admit %s for %s: %.2f kW at %.2f (total %.2f kW)", id, phase, commit, price, total)
		return true
	}

	for _, s := range scored {
		id := s.c.Offer.Target()
		if present[id] {
			continue
		}
		admit(id, s.capacity, s.c.Bid.MinCapacityKW, s.price, s.c.Original.MinPrice, s.c.Original.AssetType)
	}

	for _, b := range initial {
		if total+eps >= opp.RequiredKW {
			break
		}
		if countered[b.SupplierID] || present[b.SupplierID] || b.MinPrice > foldInShare*ref {
			continue
		}
		capKW := math.Max(0, math.Min(b.AvailableKW, b.MaxCapacityKW))
		if admit(b.SupplierID, capKW, b.MinCapacityKW, b.MinPrice, b.MinPrice, b.AssetType) {
			note("%s folded in from its initial bid", b.SupplierID)
		}
	}
	return out
}

// schedule spreads the commitment flat over the delivery sub-intervals.
func (f *CoalitionFormer) schedule(hours, kw float64) []float64 {
	slots := int(math.Ceil(hours * 60 / float64(f.intervalMinutes)))
	if slots < 1 {
		slots = 1
	}
	s := make([]float64, slots)
	for i := range s {
		s[i] = kw
	}
	return s
}

// satisfaction grows with the premium over the supplier's own minimum price.
func satisfaction(price, minPrice float64) float64 {
	if minPrice <= 0 {
		return neutralSatisfaction
	}
	s := neutralSatisfaction + 10*(price-minPrice)/minPrice
	return math.Min(math.Max(s, 0), 10)
}
