package config

import "fmt"

// Fleet sources.
const (
	FleetGenerated = "generated"
	FleetFile      = "file"
	FleetMQTT      = "mqtt"
)

// FleetConfig selects the suppliers a coordinator negotiates with.
type FleetConfig struct {
	// Source is generated, file or mqtt.
	Source string `json:"source"`
	// Size and Seed drive the synthetic fleet generator.
	Size int   `json:"size"`
	Seed int64 `json:"seed"`
	// Path points to a yaml list of supplier profiles.
	Path string `json:"path"`
	// RemoteIDs lists the suppliers reachable over MQTT.
	RemoteIDs []string `json:"remote_ids"`
}

func (c *FleetConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = FleetGenerated
	}
	if c.Size == 0 {
		c.Size = 20
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

func (c FleetConfig) Validate() error {
	switch c.Source {
	case FleetGenerated:
		if c.Size < 0 {
			return fmt.Errorf("size must not be negative")
		}
	case FleetFile:
		if c.Path == "" {
			return fmt.Errorf("path is required for a file fleet")
		}
	case FleetMQTT:
		if len(c.RemoteIDs) == 0 {
			return fmt.Errorf("remote_ids is required for an mqtt fleet")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	return nil
}
