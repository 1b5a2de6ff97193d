package dcf

import (
	"errors"
	"math"

	"chargemodel/internal/model"
)

// ErrInvalidRate is returned when a discount rate is <= -1; the discount
// divisor would be zero or sign-flipping.
var ErrInvalidRate = errors.New("discount rate must be > -1")

// Engine turns validated project inputs into a discounted-cash-flow
// valuation. It holds configuration only; every call is independent and the
// same inputs always produce the same result.
type Engine struct {
	Assumptions model.Assumptions
	IRR         IRRParams
}

func New(assumptions model.Assumptions, irr IRRParams) *Engine {
	return &Engine{Assumptions: assumptions, IRR: irr}
}

// IRRStatus marks whether the IRR field of a Result carries a computed rate.
type IRRStatus string

const (
	IRRDetermined   IRRStatus = "determined"
	IRRUndetermined IRRStatus = "undetermined"
)

// YearRow is one year of the valuation ledger. Year 0 is the investment
// year: energy, revenue and OpEx are zero and NetCashFlow is the outlay.
type YearRow struct {
	Year               int
	UtilizationApplied float64
	EnergyKWh          float64
	Revenue            float64
	LCFSRevenue        float64
	OpEx               float64
	NetCashFlow        float64
	DiscountFactor     float64
	PresentValue       float64
	CumPresentValue    float64
}

// Result is the output of one valuation run.
type Result struct {
	NPV         float64
	IRR         float64
	IRRStatus   IRRStatus
	LCOC        float64
	LCOCDefined bool
	CashFlows   []float64
	Ledger      []YearRow
}

// ComputeCashFlows projects the annual net cash flows for a project.
// Index 0 is the initial outlay (negative, net of the state rebate); indices
// 1..ProjectLifeYears are operating years. Length is always
// ProjectLifeYears + 1.
func ComputeCashFlows(p model.ProjectInputs, a model.Assumptions) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	flows := make([]float64, 0, p.ProjectLifeYears+1)
	flows = append(flows, -p.NetInitialOutlay())

	opEx := p.AnnualOpEx()
	for year := 1; year <= p.ProjectLifeYears; year++ {
		util := p.PeakUtilization * a.RampFactor(year)
		energy := a.AnnualEnergyKWh(p.ChargerCount, util)
		revenue := energy * p.ChargingRate
		lcfs := energy * a.EmissionFactorTonnesPerKWh * p.LCFSCreditValue
		flows = append(flows, revenue+lcfs-opEx)
	}
	return flows, nil
}

// PresentValue discounts a cash-flow series to year 0.
func PresentValue(flows []float64, rate float64) (float64, error) {
	if rate <= -1 {
		return 0, ErrInvalidRate
	}
	pv := 0.0
	for t, cf := range flows {
		pv += cf / math.Pow(1+rate, float64(t))
	}
	return pv, nil
}

// NPV is the present value of the projected series at the project's discount
// rate. The year-0 flow already nets CapEx against the rebate; nothing is
// subtracted again here.
func NPV(p model.ProjectInputs, a model.Assumptions) (float64, error) {
	flows, err := ComputeCashFlows(p, a)
	if err != nil {
		return 0, err
	}
	return PresentValue(flows, p.DiscountRate)
}

// Valuation runs the full pipeline: cash flows, NPV, IRR, LCOC, and the
// per-year ledger. A non-convergent IRR does not fail the run; the result
// carries IRRStatus == IRRUndetermined with NPV and LCOC intact.
func (e *Engine) Valuation(p model.ProjectInputs) (*Result, error) {
	flows, err := ComputeCashFlows(p, e.Assumptions)
	if err != nil {
		return nil, err
	}

	npv, err := PresentValue(flows, p.DiscountRate)
	if err != nil {
		return nil, err
	}

	res := &Result{
		NPV:       npv,
		IRRStatus: IRRUndetermined,
		CashFlows: flows,
	}

	if irr, err := IRR(flows, e.IRR); err == nil {
		res.IRR = irr
		res.IRRStatus = IRRDetermined
	} else if !errors.Is(err, ErrIRRUndetermined) && !errors.Is(err, ErrIRRDivergent) {
		return nil, err
	}

	res.LCOC, res.LCOCDefined = e.lcoc(p, flows)
	res.Ledger = e.buildLedger(p, flows)
	return res, nil
}

// lcoc computes levelized cost of charging: PV of costs (initial outlay plus
// each year's OpEx) over PV of energy delivered, both at the project's
// discount rate. Discounting the energy stream is the amortization
// convention that keeps LCOC consistent with NPV. Undefined when the
// discounted energy is zero.
func (e *Engine) lcoc(p model.ProjectInputs, flows []float64) (float64, bool) {
	cost := -flows[0]
	energyPV := 0.0
	opEx := p.AnnualOpEx()
	for year := 1; year <= p.ProjectLifeYears; year++ {
		df := math.Pow(1+p.DiscountRate, float64(year))
		cost += opEx / df
		util := p.PeakUtilization * e.Assumptions.RampFactor(year)
		energyPV += e.Assumptions.AnnualEnergyKWh(p.ChargerCount, util) / df
	}
	if energyPV == 0 {
		return 0, false
	}
	return cost / energyPV, true
}

func (e *Engine) buildLedger(p model.ProjectInputs, flows []float64) []YearRow {
	ledger := make([]YearRow, 0, len(flows))
	cum := 0.0
	opEx := p.AnnualOpEx()

	for year, cf := range flows {
		row := YearRow{
			Year:           year,
			NetCashFlow:    cf,
			DiscountFactor: 1 / math.Pow(1+p.DiscountRate, float64(year)),
		}
		if year > 0 {
			row.UtilizationApplied = p.PeakUtilization * e.Assumptions.RampFactor(year)
			row.EnergyKWh = e.Assumptions.AnnualEnergyKWh(p.ChargerCount, row.UtilizationApplied)
			row.Revenue = row.EnergyKWh * p.ChargingRate
			row.LCFSRevenue = row.EnergyKWh * e.Assumptions.EmissionFactorTonnesPerKWh * p.LCFSCreditValue
			row.OpEx = opEx
		}
		row.PresentValue = cf * row.DiscountFactor
		cum += row.PresentValue
		row.CumPresentValue = cum
		ledger = append(ledger, row)
	}
	return ledger
}
