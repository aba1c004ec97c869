package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/vpp/core/market"
	"github.com/kilianp07/vpp/core/metrics"
	"github.com/kilianp07/vpp/core/negotiation"
	"github.com/kilianp07/vpp/core/optimize"
	"github.com/kilianp07/vpp/infra/mqtt"
)

// EnvPrefix marks environment variables that override file values, e.g.
// VPP_NEGOTIATION__MAX_ROUNDS=5.
const EnvPrefix = "VPP_"

type Config struct {
	Negotiation negotiation.Config `json:"negotiation"`
	Optimizer   optimize.Config    `json:"optimizer"`
	Metrics     metrics.Config     `json:"metrics"`
	Logging     LoggingConfig      `json:"logging"`
	MQTT        mqtt.Config        `json:"mqtt"`
	Market      market.Config      `json:"market"`
	Fleet       FleetConfig        `json:"fleet"`
	API         APIConfig          `json:"api"`
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section. The MQTT section is
// only defaulted when a broker is configured.
func (c *Config) SetDefaults() {
	c.Negotiation.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Logging.SetDefaults()
	c.Market.SetDefaults()
	c.Fleet.SetDefaults()
	c.API.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section and reports all failures at once.
func (c Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}
	add("negotiation", c.Negotiation.Validate())
	add("optimizer", c.Optimizer.Validate())
	add("logging", c.Logging.Validate())
	add("market", c.Market.Validate())
	add("fleet", c.Fleet.Validate())
	add("api", c.API.Validate())
	add("metrics", c.Metrics.Validate())
	if c.MQTT.Broker != "" || c.Fleet.Source == FleetMQTT {
		add("mqtt", c.MQTT.Validate())
	}
	return errors.Join(errs...)
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
