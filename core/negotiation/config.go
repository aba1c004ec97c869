package negotiation

import "fmt"

// Config defines the negotiation settings. Zero numeric fields take their
// defaults in SetDefaults; TargetMargin and BonusCap are pointers so that an
// explicit 0 is kept.
type Config struct {
	MaxRounds            int      `json:"max_rounds"`
	TargetMargin         *float64 `json:"target_margin"`
	MaxOffers            int      `json:"max_offers"`
	BonusCap             *float64 `json:"bonus_cap"`
	ParticipationFloorKW float64  `json:"participation_floor_kw"`
	MinCoalitionSize     int      `json:"min_coalition_size"`
	MinCoverageRatio     float64  `json:"min_coverage_ratio"`
	Workers              int      `json:"workers"`
	// Seed namespaces the generated offer identifiers.
	Seed                    int64 `json:"seed"`
	ScheduleIntervalMinutes int   `json:"schedule_interval_minutes"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.MaxRounds == 0 {
		c.MaxRounds = 3
	}
	if c.TargetMargin == nil {
		c.TargetMargin = floatPtr(0.15)
	}
	if c.MaxOffers == 0 {
		c.MaxOffers = 25
	}
	if c.BonusCap == nil {
		c.BonusCap = floatPtr(10)
	}
	if c.ParticipationFloorKW == 0 {
		c.ParticipationFloorKW = 0.1
	}
	if c.MinCoalitionSize == 0 {
		c.MinCoalitionSize = 2
	}
	if c.MinCoverageRatio == 0 {
		c.MinCoverageRatio = 0.8
	}
	if c.Workers == 0 {
		c.Workers = 8
	}
	if c.ScheduleIntervalMinutes == 0 {
		c.ScheduleIntervalMinutes = 60
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch {
	case c.MaxRounds < 1:
		return fmt.Errorf("max_rounds must be at least 1")
	case c.Margin() < 0:
		return fmt.Errorf("target_margin must not be negative")
	case c.MaxOffers < 1:
		return fmt.Errorf("max_offers must be at least 1")
	case c.MaxBonus() < 0:
		return fmt.Errorf("bonus_cap must not be negative")
	case c.ParticipationFloorKW < 0:
		return fmt.Errorf("participation_floor_kw must not be negative")
	case c.MinCoalitionSize < 1:
		return fmt.Errorf("min_coalition_size must be at least 1")
	case c.MinCoverageRatio <= 0 || c.MinCoverageRatio > 1:
		return fmt.Errorf("min_coverage_ratio must be in (0,1]")
	case c.Workers < 1:
		return fmt.Errorf("workers must be at least 1")
	case c.ScheduleIntervalMinutes < 1:
		return fmt.Errorf("schedule_interval_minutes must be at least 1")
	}
	return nil
}

// Margin is the target margin over the reference price, 0.15 when unset.
func (c Config) Margin() float64 {
	if c.TargetMargin == nil {
		return 0.15
	}
	return *c.TargetMargin
}

// MaxBonus is the cap on the concession bonus, 10 when unset.
func (c Config) MaxBonus() float64 {
	if c.BonusCap == nil {
		return 10
	}
	return *c.BonusCap
}

func floatPtr(v float64) *float64 { return &v }
