package model

// SupplierResponse resolves a counter-offer. Confidence is only used as a
// tie-break weight when forming the coalition.
type SupplierResponse struct {
	ID                string   `json:"id"`
	OfferID           string   `json:"offer_id"`
	SupplierID        string   `json:"supplier_id"`
	Accepted          bool     `json:"accepted"`
	CounterPrice      *float64 `json:"counter_price,omitempty"`
	CounterCapacityKW *float64 `json:"counter_capacity_kw,omitempty"`
	RejectionReason   string   `json:"rejection_reason,omitempty"`
	Confidence        float64  `json:"confidence"`
}

// IsCounter reports whether the response is a rejection carrying new terms.
func (r SupplierResponse) IsCounter() bool {
	return !r.Accepted && r.CounterPrice != nil
}

// CapacityKW returns the capacity the supplier stands behind: the counter
// capacity when given, the requested capacity otherwise.
func (r SupplierResponse) CapacityKW(requested float64) float64 {
	if r.CounterCapacityKW != nil {
		return *r.CounterCapacityKW
	}
	return requested
}

// Float returns a pointer to v. Used for the optional response fields.
func Float(v float64) *float64 { return &v }
