package model

// CoalitionMember is a supplier whose capacity is committed to an
// opportunity.
type CoalitionMember struct {
	SupplierID   string    `json:"supplier_id"`
	CommittedKW  float64   `json:"committed_kw"`
	AgreedPrice  float64   `json:"agreed_price"` // currency/MWh
	Schedule     []float64 `json:"schedule"`     // kW per sub-interval
	AssetType    AssetType `json:"asset_type"`
	Satisfaction float64   `json:"satisfaction"` // 0-10, reporting only
}

// TotalCommittedKW sums the committed capacity of the members.
func TotalCommittedKW(members []CoalitionMember) float64 {
	var total float64
	for _, m := range members {
		total += m.CommittedKW
	}
	return total
}
