package supplier

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/vpp/core/model"
)

// BESS describes a residential battery.
type BESS struct {
	CapacityKWh   float64 `json:"capacity_kwh" yaml:"capacity_kwh"`
	MaxPowerKW    float64 `json:"max_power_kw" yaml:"max_power_kw"`
	SoCPercent    float64 `json:"soc_percent" yaml:"soc_percent"`
	MinSoCPercent float64 `json:"min_soc_percent" yaml:"min_soc_percent"`
}

// DischargeKW is the power the battery can sustain for a quarter hour above
// its minimum state of charge.
func (b BESS) DischargeKW() float64 {
	kwh := (b.SoCPercent - b.MinSoCPercent) / 100 * b.CapacityKWh
	return math.Max(0, math.Min(b.MaxPowerKW, kwh*4))
}

// EV describes an electric vehicle connected at the prosumer site.
type EV struct {
	BatteryKWh          float64   `json:"battery_kwh" yaml:"battery_kwh"`
	MaxPowerKW          float64   `json:"max_power_kw" yaml:"max_power_kw"`
	SoCPercent          float64   `json:"soc_percent" yaml:"soc_percent"`
	DepartureSoCPercent float64   `json:"departure_soc_percent" yaml:"departure_soc_percent"`
	PluggedIn           bool      `json:"plugged_in" yaml:"plugged_in"`
	Departure           time.Time `json:"departure" yaml:"departure"`
}

// ChargeNeededKWh is the energy still missing to reach the departure target.
func (e EV) ChargeNeededKWh() float64 {
	if e.SoCPercent >= e.DepartureSoCPercent {
		return 0
	}
	return (e.DepartureSoCPercent - e.SoCPercent) / 100 * e.BatteryKWh
}

// Solar describes a rooftop PV installation.
type Solar struct {
	CapacityKW float64 `json:"capacity_kw" yaml:"capacity_kw"`
}

// Profile is the static description of a prosumer. CapacityKW and MinPrice,
// when set, override the values derived from the assets; scenario files use
// them to describe block bids.
type Profile struct {
	ID                  string              `json:"id" yaml:"id"`
	AssetType           model.AssetType     `json:"asset_type,omitempty" yaml:"asset_type,omitempty"`
	BESS                *BESS               `json:"bess,omitempty" yaml:"bess,omitempty"`
	EV                  *EV                 `json:"ev,omitempty" yaml:"ev,omitempty"`
	Solar               *Solar              `json:"solar,omitempty" yaml:"solar,omitempty"`
	CapacityKW          float64             `json:"capacity_kw,omitempty" yaml:"capacity_kw,omitempty"`
	BlockKW             float64             `json:"block_kw,omitempty" yaml:"block_kw,omitempty"`
	ReserveKW           float64             `json:"reserve_kw,omitempty" yaml:"reserve_kw,omitempty"`
	MinPrice            float64             `json:"min_price,omitempty" yaml:"min_price,omitempty"`
	Willingness         float64             `json:"willingness,omitempty" yaml:"willingness,omitempty"`
	Risk                model.RiskTolerance `json:"risk,omitempty" yaml:"risk,omitempty"`
	BackupHours         float64             `json:"backup_hours,omitempty" yaml:"backup_hours,omitempty"`
	CompensationFloor   float64             `json:"compensation_floor,omitempty" yaml:"compensation_floor,omitempty"`
	MaxDischargePercent float64             `json:"max_discharge_percent,omitempty" yaml:"max_discharge_percent,omitempty"`
}

const (
	defaultWillingness    = 0.8
	backupLoadKW          = 2.0
	gridShareBESS         = 0.7
	gridShareEV           = 0.5
	solarCurtailment      = 0.2
	availabilityThreshold = 0.3
)

// Validate checks the profile for obviously broken values.
func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is empty")
	}
	if p.CapacityKW < 0 || p.BlockKW < 0 || p.ReserveKW < 0 || p.MinPrice < 0 {
		return fmt.Errorf("profile %s: negative capacity or price", p.ID)
	}
	if p.Willingness < 0 || p.Willingness > 1 {
		return fmt.Errorf("profile %s: willingness %v outside [0,1]", p.ID, p.Willingness)
	}
	switch p.Risk {
	case "", model.RiskLow, model.RiskMedium, model.RiskHigh:
	default:
		return fmt.Errorf("profile %s: unknown risk tolerance %q", p.ID, p.Risk)
	}
	return nil
}

func (p Profile) willingness() float64 {
	if p.Willingness == 0 {
		return defaultWillingness
	}
	return p.Willingness
}

// RiskTolerance returns the explicit tolerance or derives it from the
// participation willingness.
func (p Profile) RiskTolerance() model.RiskTolerance {
	if p.Risk != "" {
		return p.Risk
	}
	w := p.willingness()
	switch {
	case w < 0.5:
		return model.RiskLow
	case w > 0.8:
		return model.RiskHigh
	}
	return model.RiskMedium
}

// Asset returns the dominant asset type.
func (p Profile) Asset() model.AssetType {
	switch {
	case p.AssetType != "":
		return p.AssetType
	case p.BESS != nil:
		return model.AssetBESS
	case p.EV != nil:
		return model.AssetEV
	case p.Solar != nil:
		return model.AssetSolar
	}
	return model.AssetLoad
}

// bessFlexKW is the battery discharge left after the backup reserve and the
// grid discharge limit.
func (p Profile) bessFlexKW() float64 {
	b := p.BESS
	current := b.SoCPercent / 100 * b.CapacityKWh
	floor := math.Max(b.MinSoCPercent/100*b.CapacityKWh, p.BackupHours*backupLoadKW)
	energy := current - floor
	if p.MaxDischargePercent > 0 {
		energy = math.Min(energy, p.MaxDischargePercent/100*b.CapacityKWh)
	}
	return math.Max(0, math.Min(b.MaxPowerKW, energy*4))
}

// capacity returns the offerable capacity and the capacity held back for
// backup power.
func (p Profile) capacity(service model.ServiceKind) (avail, reserve float64) {
	if p.CapacityKW > 0 {
		return p.CapacityKW, p.ReserveKW
	}
	if p.BESS != nil {
		flex := p.bessFlexKW()
		avail += flex * gridShareBESS
		reserve += math.Max(0, p.BESS.DischargeKW()-flex) * gridShareBESS
	}
	if p.EV != nil && p.EV.PluggedIn {
		avail += p.EV.MaxPowerKW * gridShareEV
	}
	if p.Solar != nil && service == model.ServiceEnergy {
		avail += p.Solar.CapacityKW * solarCurtailment
	}
	return avail, reserve + p.ReserveKW
}

// minPrice is the explicit price or 80% of the reference price plus a premium
// of up to 20 currency/MWh for reluctant participants.
func (p Profile) minPrice(ref float64) float64 {
	if p.MinPrice > 0 {
		return p.MinPrice
	}
	return ref*0.8 + (1-p.willingness())*20
}
