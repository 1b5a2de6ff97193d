package model

import "fmt"

// Assumptions defines the physical and policy constants of the deployment.
// These are configuration, not derived values: they materially change the
// valuation, so they load from config and can be overridden per request.
// Units:
// - ChargerPowerKW: kW nameplate per charger
// - HoursPerDay: operating hours per day (0, 24]
// - DaysPerYear: operating days per year (0, 366]
// - EmissionFactorTonnesPerKWh: tonnes CO2e displaced per kWh delivered
// - RampFactors: multipliers on PeakUtilization for years 1..len; empty
//   means no ramp (steady state from year 1)
type Assumptions struct {
	ChargerPowerKW             float64
	HoursPerDay                float64
	DaysPerYear                float64
	EmissionFactorTonnesPerKWh float64
	RampFactors                []float64
}

// DefaultAssumptions models a DC fast-charging site: 350 kW chargers, 16
// operating hours/day year-round, a grid displacement factor of 0.4 kg
// CO2e/kWh, and utilization ramping 70%/85%/100% over the first three years.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ChargerPowerKW:             350,
		HoursPerDay:                16,
		DaysPerYear:                365,
		EmissionFactorTonnesPerKWh: 0.0004,
		RampFactors:                []float64{0.70, 0.85, 1.00},
	}
}

func (a *Assumptions) Validate() error {
	if a.ChargerPowerKW <= 0 {
		return invalid("ChargerPowerKW", "must be > 0")
	}
	if a.HoursPerDay <= 0 || a.HoursPerDay > 24 {
		return invalid("HoursPerDay", "must be in (0, 24]")
	}
	if a.DaysPerYear <= 0 || a.DaysPerYear > 366 {
		return invalid("DaysPerYear", "must be in (0, 366]")
	}
	if a.EmissionFactorTonnesPerKWh < 0 {
		return invalid("EmissionFactorTonnesPerKWh", "must be >= 0")
	}
	for i, f := range a.RampFactors {
		if f <= 0 || f > 1 {
			return invalid("RampFactors", fmt.Sprintf("factor %d must be in (0, 1]", i))
		}
	}
	return nil
}

// AnnualEnergyKWh is the steady-state energy throughput of the site at the
// given utilization, before any ramp.
func (a *Assumptions) AnnualEnergyKWh(chargerCount int, utilization float64) float64 {
	return a.ChargerPowerKW * a.HoursPerDay * a.DaysPerYear * utilization * float64(chargerCount)
}

// RampFactor returns the utilization multiplier for an operating year
// (1-based). Years past the ramp schedule run at steady state.
func (a *Assumptions) RampFactor(year int) float64 {
	if year >= 1 && year <= len(a.RampFactors) {
		return a.RampFactors[year-1]
	}
	return 1.0
}
