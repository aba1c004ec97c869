package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/vpp/config"
	coremqtt "github.com/kilianp07/vpp/core/mqtt"
	"github.com/kilianp07/vpp/core/supplier"
	"github.com/kilianp07/vpp/infra/mqtt"
)

// LoadProfiles reads a yaml list of supplier profiles.
func LoadProfiles(path string) ([]supplier.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profiles []supplier.Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// Profiles returns the local prosumer profiles described by cfg. The mqtt
// source has no local profiles.
func Profiles(cfg config.FleetConfig, start time.Time) ([]supplier.Profile, error) {
	switch cfg.Source {
	case config.FleetGenerated:
		return supplier.GenerateFleet(cfg.Seed, cfg.Size, start), nil
	case config.FleetFile:
		return LoadProfiles(cfg.Path)
	case config.FleetMQTT:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown fleet source %q", cfg.Source)
}

// BuildSuppliers returns the suppliers described by cfg. Remote suppliers
// are reached through req, which may be nil for local sources.
func BuildSuppliers(cfg config.FleetConfig, req coremqtt.Requester, start time.Time) ([]supplier.Supplier, error) {
	if cfg.Source == config.FleetMQTT {
		if req == nil {
			return nil, fmt.Errorf("mqtt fleet requires a broker connection")
		}
		return mqtt.RemoteSuppliers(cfg.RemoteIDs, req), nil
	}
	profiles, err := Profiles(cfg, start)
	if err != nil {
		return nil, err
	}
	return supplier.Prosumers(profiles), nil
}
