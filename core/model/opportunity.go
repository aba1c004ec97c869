package model

import (
	"errors"
	"fmt"
	"time"
)

// ServiceKind identifies the grid service an opportunity procures.
type ServiceKind string

const (
	ServiceEnergy             ServiceKind = "ENERGY"
	ServiceSpinningReserve    ServiceKind = "SPINNING_RESERVE"
	ServiceNonSpinningReserve ServiceKind = "NON_SPINNING_RESERVE"
)

// Valid reports whether k is one of the known service kinds.
func (k ServiceKind) Valid() bool {
	switch k {
	case ServiceEnergy, ServiceSpinningReserve, ServiceNonSpinningReserve:
		return true
	}
	return false
}

// ParseServiceKind accepts the canonical upper-case names as well as the
// lower-case aliases used in scenario files.
func ParseServiceKind(s string) (ServiceKind, error) {
	switch s {
	case "ENERGY", "energy":
		return ServiceEnergy, nil
	case "SPINNING_RESERVE", "spinning_reserve":
		return ServiceSpinningReserve, nil
	case "NON_SPINNING_RESERVE", "non_spinning_reserve":
		return ServiceNonSpinningReserve, nil
	}
	return "", fmt.Errorf("unknown service kind %q", s)
}

// Opportunity is a time-boxed market request for capacity. It is passed by
// value and never modified once created.
type Opportunity struct {
	ID             string      `json:"id" yaml:"id"`
	Service        ServiceKind `json:"service" yaml:"service"`
	DeliveryTime   time.Time   `json:"delivery_time" yaml:"delivery_time"`
	DurationHours  float64     `json:"duration_hours" yaml:"duration_hours"`
	RequiredKW     float64     `json:"required_kw" yaml:"required_kw"`
	ReferencePrice float64     `json:"reference_price" yaml:"reference_price"` // currency/MWh
	Deadline       time.Time   `json:"deadline" yaml:"deadline"`
}

// RequiredMW returns the required capacity in MW.
func (o Opportunity) RequiredMW() float64 { return o.RequiredKW / 1000 }

// Validate checks the opportunity fields.
func (o Opportunity) Validate() error {
	var errs []error
	if o.ID == "" {
		errs = append(errs, errors.New("opportunity id is empty"))
	}
	if !o.Service.Valid() {
		errs = append(errs, fmt.Errorf("invalid service kind %q", o.Service))
	}
	if o.DurationHours <= 0 {
		errs = append(errs, fmt.Errorf("duration_hours must be positive, got %v", o.DurationHours))
	}
	if o.RequiredKW <= 0 {
		errs = append(errs, fmt.Errorf("required_kw must be positive, got %v", o.RequiredKW))
	}
	if o.ReferencePrice <= 0 {
		errs = append(errs, fmt.Errorf("reference_price must be positive, got %v", o.ReferencePrice))
	}
	if o.Deadline.IsZero() {
		errs = append(errs, errors.New("deadline is not set"))
	}
	return errors.Join(errs...)
}
