// Package scenarios loads yaml negotiation scenarios and runs them against
// the negotiation engine with a fixed clock.
package scenarios

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/vpp/core/model"
	"github.com/kilianp07/vpp/core/supplier"
)

type OpportunityDef struct {
	ID              string  `yaml:"id"`
	Service         string  `yaml:"service"`
	RequiredKW      float64 `yaml:"required_kw"`
	ReferencePrice  float64 `yaml:"reference_price"`
	DurationHours   float64 `yaml:"duration_hours"`
	DeadlineMinutes int     `yaml:"deadline_minutes"`
	LeadMinutes     int     `yaml:"lead_minutes"`
}

// ToModel builds the opportunity as seen at now. Missing timing fields
// default to a one hour deadline and a two hour lead.
func (o OpportunityDef) ToModel(now time.Time) (model.Opportunity, error) {
	service := model.ServiceEnergy
	if o.Service != "" {
		s, err := model.ParseServiceKind(o.Service)
		if err != nil {
			return model.Opportunity{}, err
		}
		service = s
	}
	deadline, lead := o.DeadlineMinutes, o.LeadMinutes
	if deadline == 0 {
		deadline = 60
	}
	if lead == 0 {
		lead = 120
	}
	duration := o.DurationHours
	if duration == 0 {
		duration = 1
	}
	opp := model.Opportunity{
		ID:             o.ID,
		Service:        service,
		DeliveryTime:   now.Add(time.Duration(lead) * time.Minute),
		DurationHours:  duration,
		RequiredKW:     o.RequiredKW,
		ReferencePrice: o.ReferencePrice,
		Deadline:       now.Add(time.Duration(deadline) * time.Minute),
	}
	return opp, opp.Validate()
}

// BlockDef describes Count identical block bidders named sup-0..sup-N.
type BlockDef struct {
	Count      int             `yaml:"count"`
	CapacityKW float64         `yaml:"capacity_kw"`
	MinPrice   float64         `yaml:"min_price"`
	Asset      model.AssetType `yaml:"asset,omitempty"`
}

type GenerateDef struct {
	Seed int64 `yaml:"seed"`
	Size int   `yaml:"size"`
}

type FleetDef struct {
	Profiles []supplier.Profile `yaml:"profiles,omitempty"`
	Block    *BlockDef          `yaml:"block,omitempty"`
	Generate *GenerateDef       `yaml:"generate,omitempty"`
	// Failing lists suppliers whose capacity queries return an error.
	Failing []string `yaml:"failing,omitempty"`
}

// ToProfiles returns every profile the fleet describes, explicit ones first.
func (f FleetDef) ToProfiles(now time.Time) []supplier.Profile {
	out := append([]supplier.Profile(nil), f.Profiles...)
	if b := f.Block; b != nil {
		asset := b.Asset
		if asset == "" {
			asset = model.AssetBESS
		}
		for i := 0; i < b.Count; i++ {
			out = append(out, supplier.Profile{ID: fmt.Sprintf("sup-%d", i), AssetType: asset,
				CapacityKW: b.CapacityKW, BlockKW: b.CapacityKW, MinPrice: b.MinPrice, Risk: model.RiskMedium})
		}
	}
	if g := f.Generate; g != nil {
		out = append(out, supplier.GenerateFleet(g.Seed, g.Size, now)...)
	}
	return out
}

type Expected struct {
	Success        *bool    `yaml:"success,omitempty"`
	FailureReason  string   `yaml:"failure_reason,omitempty"`
	Members        *int     `yaml:"members,omitempty"`
	CommittedMW    *float64 `yaml:"committed_mw,omitempty"`
	ClearingPrice  *float64 `yaml:"clearing_price,omitempty"`
	Rounds         *int     `yaml:"rounds,omitempty"`
	ExpectedProfit *float64 `yaml:"expected_profit,omitempty"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Opportunity OpportunityDef `yaml:"opportunity"`
	Fleet       FleetDef       `yaml:"fleet"`
	// MaxRounds and MinCoalitionSize override the negotiation defaults.
	MaxRounds        int      `yaml:"max_rounds,omitempty"`
	MinCoalitionSize int      `yaml:"min_coalition_size,omitempty"`
	Expected         Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, errors.New("scenario name is empty")
	}
	if sc.Opportunity.ID == "" {
		sc.Opportunity.ID = sc.Name
	}
	return &sc, nil
}

// LoadDir loads every yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
		out = append(out, sc)
	}
	return out, nil
}
