package dcf

import (
	"math"
	"testing"

	"chargemodel/internal/model"

	"github.com/stretchr/testify/require"
)

// baseInputs is the reference scenario: 4 chargers at $100k, 50% peak
// utilization, $0.40/kWh, $150/tonne LCFS, 10 years at 8%.
func baseInputs() model.ProjectInputs {
	return model.ProjectInputs{
		ChargerCount:     4,
		CapExPerCharger:  100000,
		OpExRate:         0.1,
		PeakUtilization:  0.5,
		ChargingRate:     0.4,
		LCFSCreditValue:  150,
		StateRebate:      0,
		ProjectLifeYears: 10,
		DiscountRate:     0.08,
	}
}

// flatAssumptions disables the utilization ramp so operating years are
// identical.
func flatAssumptions() model.Assumptions {
	a := model.DefaultAssumptions()
	a.RampFactors = nil
	return a
}

func TestComputeCashFlows_SeriesLength(t *testing.T) {
	for _, years := range []int{1, 5, 10, 20} {
		p := baseInputs()
		p.ProjectLifeYears = years
		flows, err := ComputeCashFlows(p, flatAssumptions())
		require.NoError(t, err)
		require.Len(t, flows, years+1)
	}
}

func TestComputeCashFlows_ReferenceScenario(t *testing.T) {
	flows, err := ComputeCashFlows(baseInputs(), flatAssumptions())
	require.NoError(t, err)

	require.Equal(t, -400000.0, flows[0])
	for year := 1; year <= 10; year++ {
		require.Greater(t, flows[year], 0.0, "year %d should have positive margin", year)
	}

	npv, err := PresentValue(flows, 0.08)
	require.NoError(t, err)
	require.False(t, math.IsNaN(npv))
	require.False(t, math.IsInf(npv, 0))
}

func TestComputeCashFlows_RampScalesEarlyYears(t *testing.T) {
	a := model.DefaultAssumptions() // 70/85/100 ramp
	flows, err := ComputeCashFlows(baseInputs(), a)
	require.NoError(t, err)

	require.Less(t, flows[1], flows[2])
	require.Less(t, flows[2], flows[3])
	// Steady state from year 3 on.
	require.InDelta(t, flows[3], flows[4], 1e-9)
	require.InDelta(t, flows[3], flows[10], 1e-9)
}

func TestComputeCashFlows_RejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.ProjectInputs)
	}{
		{"charger count low", func(p *model.ProjectInputs) { p.ChargerCount = 3 }},
		{"charger count high", func(p *model.ProjectInputs) { p.ChargerCount = 9 }},
		{"zero capex", func(p *model.ProjectInputs) { p.CapExPerCharger = 0 }},
		{"negative opex rate", func(p *model.ProjectInputs) { p.OpExRate = -0.1 }},
		{"zero utilization", func(p *model.ProjectInputs) { p.PeakUtilization = 0 }},
		{"utilization above one", func(p *model.ProjectInputs) { p.PeakUtilization = 1.5 }},
		{"zero charging rate", func(p *model.ProjectInputs) { p.ChargingRate = 0 }},
		{"zero life", func(p *model.ProjectInputs) { p.ProjectLifeYears = 0 }},
		{"rate at minus one", func(p *model.ProjectInputs) { p.DiscountRate = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseInputs()
			tc.mutate(&p)
			_, err := ComputeCashFlows(p, flatAssumptions())
			require.Error(t, err)
			var invalid *model.InvalidInputError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestPresentValue_ZeroRateIsSum(t *testing.T) {
	flows := []float64{-400000, 50000, 60000, 70000}
	pv, err := PresentValue(flows, 0)
	require.NoError(t, err)
	require.InDelta(t, -220000.0, pv, 1e-9)
}

func TestPresentValue_InvalidRate(t *testing.T) {
	_, err := PresentValue([]float64{-100, 200}, -1)
	require.ErrorIs(t, err, ErrInvalidRate)
	_, err = PresentValue([]float64{-100, 200}, -1.5)
	require.ErrorIs(t, err, ErrInvalidRate)
}

func TestNPV_MonotonicInChargingRate(t *testing.T) {
	a := flatAssumptions()
	prev := math.Inf(-1)
	for _, rate := range []float64{0.10, 0.25, 0.40, 0.55} {
		p := baseInputs()
		p.ChargingRate = rate
		npv, err := NPV(p, a)
		require.NoError(t, err)
		require.Greater(t, npv, prev)
		prev = npv
	}
}

func TestNPV_ZeroRebateEquivalence(t *testing.T) {
	// The rebate enters only through the year-0 outlay, so folding it into
	// CapEx must give an identical NPV. OpEx is held at zero because it is
	// defined as a rate of gross CapEx.
	a := flatAssumptions()

	withRebate := baseInputs()
	withRebate.OpExRate = 0
	withRebate.StateRebate = 50000

	folded := withRebate
	folded.StateRebate = 0
	folded.CapExPerCharger -= 50000 / float64(withRebate.ChargerCount)

	npv1, err := NPV(withRebate, a)
	require.NoError(t, err)
	npv2, err := NPV(folded, a)
	require.NoError(t, err)
	require.InDelta(t, npv1, npv2, 1e-6)
}

func TestIRR_RootProperty(t *testing.T) {
	flows := []float64{-1000, 400, 400, 400}
	irr, err := IRR(flows, DefaultIRRParams())
	require.NoError(t, err)

	pv, err := PresentValue(flows, irr)
	require.NoError(t, err)
	require.InDelta(t, 0.0, pv, 1e-3)
}

func TestIRR_RootPropertyOnProjectScale(t *testing.T) {
	flows, err := ComputeCashFlows(baseInputs(), flatAssumptions())
	require.NoError(t, err)

	irr, err := IRR(flows, DefaultIRRParams())
	require.NoError(t, err)

	// Absolute monetary tolerance: these flows are in the millions.
	pv, err := PresentValue(flows, irr)
	require.NoError(t, err)
	require.InDelta(t, 0.0, pv, 1.0)
}

func TestIRR_BreakEven(t *testing.T) {
	irr, err := IRR([]float64{-1000, 1000}, DefaultIRRParams())
	require.NoError(t, err)
	require.InDelta(t, 0.0, irr, 1e-4)
}

func TestIRR_RootBeyondClampMaxIsDivergent(t *testing.T) {
	// The true rate here is ~1e6; Newton pins at ClampMax and the step
	// size collapses, but the boundary is not a root and must not be
	// reported as one.
	flows := []float64{-1, 1000000}
	params := DefaultIRRParams()

	_, err := IRR(flows, params)
	require.ErrorIs(t, err, ErrIRRDivergent)

	pv, pvErr := PresentValue(flows, params.ClampMax)
	require.NoError(t, pvErr)
	require.Greater(t, math.Abs(pv), 1.0)
}

func TestIRR_RootBelowClampMinIsDivergent(t *testing.T) {
	// A near-total loss: the rate that zeroes this series is below -99%.
	_, err := IRR([]float64{-1000000, 1}, DefaultIRRParams())
	require.ErrorIs(t, err, ErrIRRDivergent)
}

func TestIRR_NoSignChange(t *testing.T) {
	_, err := IRR([]float64{0, 100, 100, 100}, DefaultIRRParams())
	require.ErrorIs(t, err, ErrIRRUndetermined)

	_, err = IRR([]float64{-100, -50, -25}, DefaultIRRParams())
	require.ErrorIs(t, err, ErrIRRUndetermined)
}

func TestValuation_ReferenceScenario(t *testing.T) {
	e := New(flatAssumptions(), DefaultIRRParams())
	res, err := e.Valuation(baseInputs())
	require.NoError(t, err)

	require.Len(t, res.CashFlows, 11)
	require.Len(t, res.Ledger, 11)
	require.Equal(t, IRRDetermined, res.IRRStatus)
	require.True(t, res.LCOCDefined)
	require.Greater(t, res.LCOC, 0.0)

	// Ledger cross-checks: cumulative PV of the last row is the NPV, and
	// operating rows reconcile revenue + LCFS - OpEx to the net flow.
	last := res.Ledger[len(res.Ledger)-1]
	require.InDelta(t, res.NPV, last.CumPresentValue, 1e-6)
	for _, row := range res.Ledger[1:] {
		require.InDelta(t, row.NetCashFlow, row.Revenue+row.LCFSRevenue-row.OpEx, 1e-6)
	}
}

func TestValuation_UndeterminedIRRKeepsNPVAndLCOC(t *testing.T) {
	// OpEx so dominant that every operating year is negative: no sign
	// change, so IRR has no real root, but NPV and LCOC must still come
	// back.
	p := baseInputs()
	p.OpExRate = 50
	e := New(flatAssumptions(), DefaultIRRParams())

	res, err := e.Valuation(p)
	require.NoError(t, err)
	require.Equal(t, IRRUndetermined, res.IRRStatus)
	require.Less(t, res.NPV, 0.0)
	require.True(t, res.LCOCDefined)
}

func TestLCOC_UndefinedWithoutEnergy(t *testing.T) {
	// Guard on the utilization -> 0 limit: zero discounted energy must not
	// divide. Bypasses input validation deliberately to reach the guard.
	e := New(flatAssumptions(), DefaultIRRParams())
	p := baseInputs()
	p.PeakUtilization = 0

	_, defined := e.lcoc(p, []float64{-400000, 0, 0})
	require.False(t, defined)
}

func TestLCOC_MatchesHandComputation(t *testing.T) {
	// One charger year, no discounting: LCOC reduces to
	// (outlay + opex) / energy.
	p := baseInputs()
	p.ProjectLifeYears = 1
	p.DiscountRate = 0
	a := flatAssumptions()

	e := New(a, DefaultIRRParams())
	res, err := e.Valuation(p)
	require.NoError(t, err)
	require.True(t, res.LCOCDefined)

	energy := a.AnnualEnergyKWh(p.ChargerCount, p.PeakUtilization)
	want := (p.NetInitialOutlay() + p.AnnualOpEx()) / energy
	require.InDelta(t, want, res.LCOC, 1e-9)
}
