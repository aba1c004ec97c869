package negotiation

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kilianp07/vpp/core/model"
)

// Offer generation constants.
const (
	gapCloseShare    = "0.7" // share of the price gap conceded in the offer
	bonusShare       = "0.2"
	capacityHeadroom = "1.2" // requested capacity over the remaining gap
	normalUrgency    = 5     // first offers flagged normal, the rest low
)

// OfferGenerator turns ranked bids into counter-offers.
type OfferGenerator struct {
	cfg Config
	ns  uuid.UUID
}

// NewOfferGenerator returns a generator whose offer ids are derived from the
// configured seed.
func NewOfferGenerator(cfg Config) *OfferGenerator {
	cfg.SetDefaults()
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("vpp/negotiation/%d", cfg.Seed)))
	return &OfferGenerator{cfg: cfg, ns: ns}
}

func (g *OfferGenerator) offerID(oppID string, round int, supplierID string) string {
	return uuid.NewSHA1(g.ns, []byte(fmt.Sprintf("%s/%d/%s", oppID, round, supplierID))).String()
}

// TargetPrice is the reference price plus the configured margin.
func (g *OfferGenerator) TargetPrice(opp model.Opportunity) decimal.Decimal {
	return dec(opp.ReferencePrice).Mul(decimal.NewFromInt(1).Add(dec(g.cfg.Margin())))
}

// Generate emits at most one offer per ranked bid, in ranked order, until the
// capacity still missing after committedKW is covered. Each request is capped
// at 1.2 × the remaining gap, so the accumulated requests stay below the
// 1.5 × required redundancy ceiling. Bids whose request rounds to zero are
// skipped. The output depends only on its arguments and the configuration.
func (g *OfferGenerator) Generate(ranked []model.SupplierBid, opp model.Opportunity, round int, committedKW float64) []model.CounterOffer {
	target := g.TargetPrice(opp)
	required := dec(opp.RequiredKW)
	missing := required.Sub(dec(committedKW))
	accumulated := decimal.Zero

	n := min(len(ranked), g.cfg.MaxOffers)
	offers := make([]model.CounterOffer, 0, n)
	for _, bid := range ranked[:n] {
		gapKW := missing.Sub(accumulated)
		if !gapKW.IsPositive() {
			break
		}
		requested := decimal.Min(dec(bid.AvailableKW), gapKW.Mul(decimal.RequireFromString(capacityHeadroom))).RoundFloor(2)
		if !requested.IsPositive() {
			continue
		}

		minPrice := dec(bid.MinPrice)
		price, bonus := minPrice, decimal.Zero
		if minPrice.GreaterThan(target) {
			gap := minPrice.Sub(target)
			price = target.Add(gap.Mul(decimal.RequireFromString(gapCloseShare)))
			bonus = decimal.Min(gap.Mul(decimal.RequireFromString(bonusShare)), dec(g.cfg.MaxBonus()))
		}

		urgency := model.UrgencyNormal
		if len(offers) >= normalUrgency {
			urgency = model.UrgencyLow
		}
		offers = append(offers, model.CounterOffer{
			ID:              g.offerID(opp.ID, round, bid.SupplierID),
			OpportunityID:   opp.ID,
			SupplierIDs:     []string{bid.SupplierID},
			Price:           price.RoundCeil(2).InexactFloat64(),
			RequestedKW:     requested.InexactFloat64(),
			Round:           round,
			Bonus:           bonus.Round(2).InexactFloat64(),
			CompetingOffers: len(ranked),
			Urgency:         urgency,
		})
		accumulated = accumulated.Add(requested)
	}
	return offers
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }
