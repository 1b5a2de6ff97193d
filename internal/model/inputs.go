package model

import "fmt"

// Charger count bounds for the supported deployment shape. The model is
// calibrated for small DC fast-charging sites; counts outside this band fall
// outside the cost assumptions baked into the defaults.
const (
	MinChargerCount = 4
	MaxChargerCount = 8
)

// Defaults applied when a field is omitted.
const (
	DefaultProjectLifeYears = 10
	DefaultDiscountRate     = 0.10
)

// ProjectInputs defines the financial parameters of one charging project.
// Units:
// - CapExPerCharger: $ per charger (installed)
// - OpExRate: fraction of gross CapEx spent on operations per year
// - PeakUtilization: fraction (0,1] of full-power, full-time usage realized
// - ChargingRate: $/kWh sold
// - LCFSCreditValue: $/tonne CO2e displaced
// - StateRebate: $ one-time capital offset
// - DiscountRate: fraction, must be > -1
//
// All fractional fields are fractions, not percentages. Normalizing
// user-entered percentages is the caller's job; Validate rejects values
// outside the documented domain.
type ProjectInputs struct {
	ChargerCount     int
	CapExPerCharger  float64
	OpExRate         float64
	PeakUtilization  float64
	ChargingRate     float64
	LCFSCreditValue  float64
	StateRebate      float64
	ProjectLifeYears int
	DiscountRate     float64
}

// InvalidInputError reports a field outside its documented domain. All
// validation failures surface before any computation begins.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}

// ApplyDefaults fills omitted lifecycle fields. It does not touch zero-valued
// monetary fields; those are either legitimately zero (rebate, LCFS) or will
// fail validation (CapEx, charging rate).
func (p *ProjectInputs) ApplyDefaults() {
	if p.ProjectLifeYears == 0 {
		p.ProjectLifeYears = DefaultProjectLifeYears
	}
	if p.DiscountRate == 0 {
		p.DiscountRate = DefaultDiscountRate
	}
}

func (p *ProjectInputs) Validate() error {
	if p.ChargerCount < MinChargerCount || p.ChargerCount > MaxChargerCount {
		return invalid("ChargerCount", fmt.Sprintf("must be in [%d, %d]", MinChargerCount, MaxChargerCount))
	}
	if p.CapExPerCharger <= 0 {
		return invalid("CapExPerCharger", "must be > 0")
	}
	if p.OpExRate < 0 {
		return invalid("OpExRate", "must be >= 0")
	}
	if p.PeakUtilization <= 0 || p.PeakUtilization > 1 {
		return invalid("PeakUtilization", "must be in (0, 1]")
	}
	if p.ChargingRate <= 0 {
		return invalid("ChargingRate", "must be > 0")
	}
	if p.LCFSCreditValue < 0 {
		return invalid("LCFSCreditValue", "must be >= 0")
	}
	if p.StateRebate < 0 {
		return invalid("StateRebate", "must be >= 0")
	}
	if p.ProjectLifeYears <= 0 {
		return invalid("ProjectLifeYears", "must be >= 1")
	}
	if p.DiscountRate <= -1 {
		return invalid("DiscountRate", "must be > -1")
	}
	return nil
}

// GrossCapEx is the total installed cost before any rebate.
func (p *ProjectInputs) GrossCapEx() float64 {
	return p.CapExPerCharger * float64(p.ChargerCount)
}

// NetInitialOutlay is the year-0 investment after the state rebate.
func (p *ProjectInputs) NetInitialOutlay() float64 {
	return p.GrossCapEx() - p.StateRebate
}

// AnnualOpEx is the recurring operating cost. The rate applies to gross
// CapEx: rebates offset the initial outlay, not the cost of running the
// equipment.
func (p *ProjectInputs) AnnualOpEx() float64 {
	return p.OpExRate * p.GrossCapEx()
}
