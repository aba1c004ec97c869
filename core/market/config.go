package market

import (
	"errors"
	"fmt"

	"github.com/kilianp07/vpp/core/model"
)

// Config configures the synthetic opportunity feed.
type Config struct {
	MinIntervalSeconds int       `json:"min_interval_seconds"`
	MaxIntervalSeconds int       `json:"max_interval_seconds"`
	MinRequiredKW      float64   `json:"min_required_kw"`
	MaxRequiredKW      float64   `json:"max_required_kw"`
	MinPrice           float64   `json:"min_price"`
	MaxPrice           float64   `json:"max_price"`
	DurationsHours     []float64 `json:"durations_hours"`
	Services           []string  `json:"services"`
	JitterPct          float64   `json:"jitter_pct"`
	DeadlineMinutes    int       `json:"deadline_minutes"`
	LeadMinutes        int       `json:"lead_minutes"`
	Seed               int64     `json:"seed"`
}

// SetDefaults applies fallback values for optional fields.
func (c *Config) SetDefaults() {
	if c.MinIntervalSeconds <= 0 {
		c.MinIntervalSeconds = 60
	}
	if c.MaxIntervalSeconds <= 0 {
		c.MaxIntervalSeconds = 300
	}
	if c.MinRequiredKW == 0 {
		c.MinRequiredKW = 500
	}
	if c.MaxRequiredKW == 0 {
		c.MaxRequiredKW = 5000
	}
	if c.MinPrice == 0 {
		c.MinPrice = 40
	}
	if c.MaxPrice == 0 {
		c.MaxPrice = 120
	}
	if len(c.DurationsHours) == 0 {
		c.DurationsHours = []float64{0.25, 1, 2, 4}
	}
	if len(c.Services) == 0 {
		c.Services = []string{string(model.ServiceEnergy)}
	}
	if c.JitterPct == 0 {
		c.JitterPct = 0.1
	}
	if c.DeadlineMinutes <= 0 {
		c.DeadlineMinutes = 15
	}
	if c.LeadMinutes <= 0 {
		c.LeadMinutes = 60
	}
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	var errs []error
	if c.MinIntervalSeconds > c.MaxIntervalSeconds {
		errs = append(errs, fmt.Errorf("min_interval_seconds > max_interval_seconds"))
	}
	if c.MinRequiredKW <= 0 || c.MinRequiredKW > c.MaxRequiredKW {
		errs = append(errs, fmt.Errorf("required kW range [%v,%v] is invalid", c.MinRequiredKW, c.MaxRequiredKW))
	}
	if c.MinPrice <= 0 || c.MinPrice > c.MaxPrice {
		errs = append(errs, fmt.Errorf("price range [%v,%v] is invalid", c.MinPrice, c.MaxPrice))
	}
	for _, d := range c.DurationsHours {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("durations_hours must be positive, got %v", d))
		}
	}
	for _, s := range c.Services {
		if _, err := model.ParseServiceKind(s); err != nil {
			errs = append(errs, err)
		}
	}
	if c.JitterPct < 0 || c.JitterPct >= 1 {
		errs = append(errs, errors.New("jitter_pct must be in [0,1)"))
	}
	if c.DeadlineMinutes > c.LeadMinutes {
		errs = append(errs, errors.New("deadline_minutes must not exceed lead_minutes"))
	}
	return errors.Join(errs...)
}
