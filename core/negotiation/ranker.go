package negotiation

import (
	"math"
	"sort"

	"github.com/kilianp07/vpp/core/model"
)

// reliability is the constant reliability term of the bid score.
const reliability = 1.0

// BidScore rates a bid: cheaper and larger bids score higher.
func BidScore(b model.SupplierBid) float64 {
	return 1/math.Max(b.MinPrice, 1) + b.AvailableKW/1000 + reliability + math.Min(b.AvailableKW/10, 2)
}

type scoredBid struct {
	bid   model.SupplierBid
	score float64
}

// Rank returns the bids ordered by descending score. Ties keep their input
// order. The input slice is not modified.
func Rank(bids []model.SupplierBid) []model.SupplierBid {
	scored := make([]scoredBid, len(bids))
	for i, b := range bids {
		scored[i] = scoredBid{bid: b, score: BidScore(b)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	out := make([]model.SupplierBid, len(scored))
	for i, s := range scored {
		out[i] = s.bid
	}
	return out
}
