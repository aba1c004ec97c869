package model

import "time"

// AssetType tags the kind of flexible asset behind a supplier.
type AssetType string

const (
	AssetBESS  AssetType = "BESS"
	AssetEV    AssetType = "EV"
	AssetSolar AssetType = "SOLAR"
	AssetLoad  AssetType = "LOAD"
)

// RiskTolerance describes how far a supplier deviates from its own minimum
// price when judging an offer.
type RiskTolerance string

const (
	RiskLow    RiskTolerance = "low"
	RiskMedium RiskTolerance = "medium"
	RiskHigh   RiskTolerance = "high"
)

// Preferences is the snapshot of supplier preferences attached to a bid.
type Preferences struct {
	BackupReserveKW   float64       `json:"backup_reserve_kw" yaml:"backup_reserve_kw"` // capacity withheld for backup power
	BackupHours       float64       `json:"backup_hours" yaml:"backup_hours"`
	CompensationFloor float64       `json:"compensation_floor" yaml:"compensation_floor"` // currency/MWh
	RiskTolerance     RiskTolerance `json:"risk_tolerance" yaml:"risk_tolerance"`
	EVChargeNeededKWh float64       `json:"ev_charge_needed_kwh,omitempty" yaml:"ev_charge_needed_kwh"`
	ChargeDeadline    time.Time     `json:"charge_deadline,omitempty" yaml:"charge_deadline"`
}

// SupplierBid is a supplier's answer to a capacity query for one round.
type SupplierBid struct {
	SupplierID    string      `json:"supplier_id"`
	OpportunityID string      `json:"opportunity_id"`
	Round         int         `json:"round"`
	Available     bool        `json:"available"`
	AvailableKW   float64     `json:"available_kw"`
	MinCapacityKW float64     `json:"min_capacity_kw"`
	MaxCapacityKW float64     `json:"max_capacity_kw"`
	MinPrice      float64     `json:"min_price"` // currency/MWh
	AssetType     AssetType   `json:"asset_type"`
	Preferences   Preferences `json:"preferences"`
}

// Revised returns a new bid for the given round carrying the supplier's
// counter terms. The receiver is left untouched. A non-positive capacity keeps
// the previous availability.
func (b SupplierBid) Revised(round int, price, capacityKW float64) SupplierBid {
	nb := b
	nb.Round = round
	nb.MinPrice = price
	if capacityKW > 0 {
		nb.AvailableKW = capacityKW
	}
	return nb
}
