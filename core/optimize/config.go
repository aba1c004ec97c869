package optimize

import (
	"fmt"

	"github.com/kilianp07/vpp/core/model"
)

// Config holds the optimizer settings.
type Config struct {
	// Tolerance passed to the simplex solver.
	Tolerance float64 `json:"tolerance"`
	// AssetCosts is the opportunity cost in currency/MWh assumed by the
	// centralized baseline for each asset type.
	AssetCosts map[model.AssetType]float64 `json:"asset_costs"`
	// DefaultAssetCost applies to asset types missing from AssetCosts. Zero
	// means unset and becomes 100; give a type an explicit AssetCosts entry
	// of 0 to price it at no cost.
	DefaultAssetCost float64 `json:"default_asset_cost"`
}

// SetDefaults fills zero values. A nil AssetCosts map gets the BESS and EV
// defaults; an empty non-nil map is kept.
func (c *Config) SetDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = 1e-7
	}
	if c.AssetCosts == nil {
		c.AssetCosts = map[model.AssetType]float64{
			model.AssetBESS: 50,
			model.AssetEV:   80,
		}
	}
	if c.DefaultAssetCost == 0 {
		c.DefaultAssetCost = 100
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Tolerance <= 0 {
		return fmt.Errorf("optimizer tolerance must be positive")
	}
	for k, v := range c.AssetCosts {
		if v < 0 {
			return fmt.Errorf("asset cost for %s must not be negative", k)
		}
	}
	if c.DefaultAssetCost < 0 {
		return fmt.Errorf("default asset cost must not be negative")
	}
	return nil
}

// AssetCost returns the assumed opportunity cost for an asset type.
func (c Config) AssetCost(t model.AssetType) float64 {
	if v, ok := c.AssetCosts[t]; ok {
		return v
	}
	return c.DefaultAssetCost
}
