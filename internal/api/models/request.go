package models

import (
	"chargemodel/internal/config"
	"chargemodel/internal/model"
)

// ProjectInputsPayload is the wire shape of project inputs. Fractions are
// fractions on the wire too; the UI converts user-entered percentages before
// submitting.
type ProjectInputsPayload struct {
	ChargerCount     int     `json:"charger_count"`
	CapExPerCharger  float64 `json:"capex_per_charger"`
	OpExRate         float64 `json:"opex_rate"`
	PeakUtilization  float64 `json:"peak_utilization"`
	ChargingRate     float64 `json:"charging_rate"`
	LCFSCreditValue  float64 `json:"lcfs_credit_value,omitempty"`
	StateRebate      float64 `json:"state_rebate,omitempty"`
	ProjectLifeYears int     `json:"project_life_years,omitempty"`
	DiscountRate     float64 `json:"discount_rate,omitempty"`
}

// ToModel converts to the domain type, filling omitted lifecycle defaults.
func (p ProjectInputsPayload) ToModel() model.ProjectInputs {
	m := model.ProjectInputs{
		ChargerCount:     p.ChargerCount,
		CapExPerCharger:  p.CapExPerCharger,
		OpExRate:         p.OpExRate,
		PeakUtilization:  p.PeakUtilization,
		ChargingRate:     p.ChargingRate,
		LCFSCreditValue:  p.LCFSCreditValue,
		StateRebate:      p.StateRebate,
		ProjectLifeYears: p.ProjectLifeYears,
		DiscountRate:     p.DiscountRate,
	}
	m.ApplyDefaults()
	return m
}

// FromModelInputs converts a stored domain record back to the wire shape.
func FromModelInputs(m model.ProjectInputs) ProjectInputsPayload {
	return ProjectInputsPayload{
		ChargerCount:     m.ChargerCount,
		CapExPerCharger:  m.CapExPerCharger,
		OpExRate:         m.OpExRate,
		PeakUtilization:  m.PeakUtilization,
		ChargingRate:     m.ChargingRate,
		LCFSCreditValue:  m.LCFSCreditValue,
		StateRebate:      m.StateRebate,
		ProjectLifeYears: m.ProjectLifeYears,
		DiscountRate:     m.DiscountRate,
	}
}

// AssumptionsPayload carries per-request overrides of the server's deployment
// assumptions. Zero-valued fields keep the configured value; ramp_factors
// follows the config convention (absent = keep, empty = no ramp).
type AssumptionsPayload struct {
	ChargerPowerKW             float64   `json:"charger_power_kw,omitempty"`
	HoursPerDay                float64   `json:"hours_per_day,omitempty"`
	DaysPerYear                float64   `json:"days_per_year,omitempty"`
	EmissionFactorTonnesPerKWh float64   `json:"emission_factor_tonnes_per_kwh,omitempty"`
	RampFactors                []float64 `json:"ramp_factors,omitempty"`
}

// MergeOver overlays the payload's set fields onto base.
func (a *AssumptionsPayload) MergeOver(base model.Assumptions) model.Assumptions {
	if a == nil {
		return base
	}
	merged := config.MergeAssumptions(
		config.AssumptionsConfig{
			ChargerPowerKW:             base.ChargerPowerKW,
			HoursPerDay:                base.HoursPerDay,
			DaysPerYear:                base.DaysPerYear,
			EmissionFactorTonnesPerKWh: base.EmissionFactorTonnesPerKWh,
			RampFactors:                base.RampFactors,
		},
		config.AssumptionsConfig{
			ChargerPowerKW:             a.ChargerPowerKW,
			HoursPerDay:                a.HoursPerDay,
			DaysPerYear:                a.DaysPerYear,
			EmissionFactorTonnesPerKWh: a.EmissionFactorTonnesPerKWh,
			RampFactors:                a.RampFactors,
		},
	)
	return merged.ToModelAssumptions()
}

// CalculateRequest is the body of POST /api/v1/calculate.
type CalculateRequest struct {
	Inputs      ProjectInputsPayload `json:"inputs" binding:"required"`
	Assumptions *AssumptionsPayload  `json:"assumptions,omitempty"`
}

// ProjectRequest creates or replaces a stored project.
type ProjectRequest struct {
	Name   string               `json:"name" binding:"required"`
	Notes  string               `json:"notes,omitempty"`
	Inputs ProjectInputsPayload `json:"inputs" binding:"required"`
}

// SensitivityRequest runs the engine across a utilization x rate grid.
type SensitivityRequest struct {
	Inputs        ProjectInputsPayload `json:"inputs" binding:"required"`
	Assumptions   *AssumptionsPayload  `json:"assumptions,omitempty"`
	Utilizations  []float64            `json:"utilizations" binding:"required"`
	ChargingRates []float64            `json:"charging_rates" binding:"required"`
}
