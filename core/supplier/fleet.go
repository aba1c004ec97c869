package supplier

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/vpp/core/model"
)

type weighted[T any] struct {
	v T
	w float64
}

func pick[T any](r *rand.Rand, choices []weighted[T]) T {
	var total float64
	for _, c := range choices {
		total += c.w
	}
	x := r.Float64() * total
	for _, c := range choices {
		if x < c.w {
			return c.v
		}
		x -= c.w
	}
	return choices[len(choices)-1].v
}

func uniform(r *rand.Rand, lo, hi float64) float64 { return lo + r.Float64()*(hi-lo) }

var (
	bessSizes = []weighted[BESS]{
		{BESS{CapacityKWh: 5, MaxPowerKW: 3}, 0.15},
		{BESS{CapacityKWh: 10, MaxPowerKW: 5}, 0.35},
		{BESS{CapacityKWh: 13.5, MaxPowerKW: 7}, 0.25},
		{BESS{CapacityKWh: 16, MaxPowerKW: 8}, 0.15},
		{BESS{CapacityKWh: 20, MaxPowerKW: 10}, 0.10},
	}
	evSizes = []weighted[EV]{
		{EV{BatteryKWh: 40, MaxPowerKW: 7.2}, 0.25},
		{EV{BatteryKWh: 64, MaxPowerKW: 11}, 0.20},
		{EV{BatteryKWh: 75, MaxPowerKW: 11.5}, 0.30},
		{EV{BatteryKWh: 82, MaxPowerKW: 11.5}, 0.15},
		{EV{BatteryKWh: 100, MaxPowerKW: 11.5}, 0.10},
	}
	solarSizes = []weighted[float64]{{4, 0.20}, {6, 0.30}, {8, 0.25}, {10, 0.15}, {12, 0.10}}
)

// GenerateFleet builds n synthetic prosumer profiles. The same seed and start
// time always produce the same fleet.
func GenerateFleet(seed int64, n int, start time.Time) []Profile {
	r := rand.New(rand.NewSource(seed))
	fleet := make([]Profile, 0, n)
	for i := 0; i < n; i++ {
		p := Profile{ID: fmt.Sprintf("prosumer_%03d", i+1)}
		switch r.Intn(3) {
		case 0: // conservative
			p.BackupHours = uniform(r, 6, 12)
			p.Willingness = uniform(r, 0.3, 0.6)
			p.CompensationFloor = uniform(r, 200, 350)
			p.MaxDischargePercent = uniform(r, 30, 50)
		case 1: // moderate
			p.BackupHours = uniform(r, 3, 8)
			p.Willingness = uniform(r, 0.6, 0.8)
			p.CompensationFloor = uniform(r, 120, 250)
			p.MaxDischargePercent = uniform(r, 50, 70)
		default: // aggressive
			p.BackupHours = uniform(r, 1, 4)
			p.Willingness = uniform(r, 0.8, 0.95)
			p.CompensationFloor = uniform(r, 80, 180)
			p.MaxDischargePercent = uniform(r, 70, 85)
		}
		hasBESS := r.Float64() < 0.35
		hasEV := r.Float64() < 0.45
		hasSolar := r.Float64() < 0.55
		if hasBESS {
			b := pick(r, bessSizes)
			b.SoCPercent = uniform(r, 40, 80)
			b.MinSoCPercent = uniform(r, 5, 15)
			p.BESS = &b
		}
		if hasEV {
			e := pick(r, evSizes)
			e.SoCPercent = uniform(r, 60, 85)
			e.DepartureSoCPercent = uniform(r, 75, 90)
			e.PluggedIn = r.Float64() < 0.8
			day := start.Truncate(24 * time.Hour).Add(24 * time.Hour)
			e.Departure = day.Add(time.Duration(6+r.Intn(4))*time.Hour + time.Duration(15*r.Intn(4))*time.Minute)
			p.EV = &e
		}
		if hasSolar {
			p.Solar = &Solar{CapacityKW: pick(r, solarSizes)}
		}
		fleet = append(fleet, p)
	}
	return fleet
}

// FleetStats summarises a fleet for reporting.
type FleetStats struct {
	Size      int                     `json:"size" yaml:"size"`
	ByAsset   map[model.AssetType]int `json:"by_asset" yaml:"by_asset"`
	WithBESS  int                     `json:"with_bess" yaml:"with_bess"`
	WithEV    int                     `json:"with_ev" yaml:"with_ev"`
	WithSolar int                     `json:"with_solar" yaml:"with_solar"`
}

// Stats counts the assets in a fleet.
func Stats(fleet []Profile) FleetStats {
	s := FleetStats{Size: len(fleet), ByAsset: make(map[model.AssetType]int)}
	for _, p := range fleet {
		s.ByAsset[p.Asset()]++
		if p.BESS != nil {
			s.WithBESS++
		}
		if p.EV != nil {
			s.WithEV++
		}
		if p.Solar != nil {
			s.WithSolar++
		}
	}
	return s
}
