package model

// Urgency is a hint attached to counter-offers.
type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyLow    Urgency = "low"
)

// CounterOffer is a price/quantity proposal addressed to a single supplier.
type CounterOffer struct {
	ID              string   `json:"id"`
	OpportunityID   string   `json:"opportunity_id"`
	SupplierIDs     []string `json:"supplier_ids"`
	Price           float64  `json:"price"` // currency/MWh
	RequestedKW     float64  `json:"requested_kw"`
	Round           int      `json:"round"`
	Bonus           float64  `json:"bonus"`
	CompetingOffers int      `json:"competing_offers"`
	Urgency         Urgency  `json:"urgency"`
}

// Target returns the supplier the offer is addressed to.
func (o CounterOffer) Target() string {
	if len(o.SupplierIDs) == 0 {
		return ""
	}
	return o.SupplierIDs[0]
}
