package models

import (
	"math"
	"time"

	"chargemodel/internal/analysis"
	"chargemodel/internal/dcf"
	"chargemodel/internal/docparse"
	"chargemodel/internal/model"
)

// Sentinel strings used where a metric has no numeric value, per the
// dashboard contract.
const (
	IRRUndetermined = "undetermined"
	LCOCUndefined   = "undefined"
)

// ValuationResponse is the wire shape of one DCF result. IRR is a number or
// the string "undetermined"; LCOC is a number or the string "undefined".
// Display fields are rounded (IRR to percentage points, LCOC to $/kWh); the
// raw fields keep full precision.
type ValuationResponse struct {
	NPV               float64       `json:"npv"`
	IRR               interface{}   `json:"irr"`
	IRRPercentDisplay interface{}   `json:"irr_percent_display"`
	LCOC              interface{}   `json:"lcoc"`
	LCOCDisplay       interface{}   `json:"lcoc_display"`
	CashFlows         []float64     `json:"cash_flows"`
	Ledger            []YearPayload `json:"ledger"`
}

// YearPayload is one ledger row on the wire.
type YearPayload struct {
	Year               int     `json:"year"`
	UtilizationApplied float64 `json:"utilization_applied"`
	EnergyKWh          float64 `json:"energy_kwh"`
	Revenue            float64 `json:"revenue"`
	LCFSRevenue        float64 `json:"lcfs_revenue"`
	OpEx               float64 `json:"opex"`
	NetCashFlow        float64 `json:"net_cash_flow"`
	DiscountFactor     float64 `json:"discount_factor"`
	PresentValue       float64 `json:"present_value"`
	CumPresentValue    float64 `json:"cum_present_value"`
}

// FromResult maps an engine result to the response envelope.
func FromResult(res *dcf.Result) ValuationResponse {
	out := ValuationResponse{
		NPV:               res.NPV,
		IRR:               IRRUndetermined,
		IRRPercentDisplay: IRRUndetermined,
		LCOC:              LCOCUndefined,
		LCOCDisplay:       LCOCUndefined,
		CashFlows:         res.CashFlows,
	}
	if res.IRRStatus == dcf.IRRDetermined {
		out.IRR = res.IRR
		out.IRRPercentDisplay = roundTo(res.IRR*100, 2)
	}
	if res.LCOCDefined {
		out.LCOC = res.LCOC
		out.LCOCDisplay = roundTo(res.LCOC, 3)
	}
	out.Ledger = make([]YearPayload, 0, len(res.Ledger))
	for _, row := range res.Ledger {
		out.Ledger = append(out.Ledger, YearPayload{
			Year:               row.Year,
			UtilizationApplied: row.UtilizationApplied,
			EnergyKWh:          row.EnergyKWh,
			Revenue:            row.Revenue,
			LCFSRevenue:        row.LCFSRevenue,
			OpEx:               row.OpEx,
			NetCashFlow:        row.NetCashFlow,
			DiscountFactor:     row.DiscountFactor,
			PresentValue:       row.PresentValue,
			CumPresentValue:    row.CumPresentValue,
		})
	}
	return out
}

func roundTo(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}

// ProjectResponse is a stored project on the wire.
type ProjectResponse struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Notes     string               `json:"notes,omitempty"`
	Inputs    ProjectInputsPayload `json:"inputs"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func FromProject(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Notes:     p.Notes,
		Inputs:    FromModelInputs(p.Inputs),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// DocumentResponse is an uploaded document plus its extraction and the
// comparison against the project's modeled CapEx.
type DocumentResponse struct {
	ID         string             `json:"id"`
	ProjectID  string             `json:"project_id"`
	Filename   string             `json:"filename"`
	UploadedAt time.Time          `json:"uploaded_at"`
	Items      []CostItemPayload  `json:"items"`
	Comparison *ComparisonPayload `json:"comparison,omitempty"`
}

type CostItemPayload struct {
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	Total    float64 `json:"total"`
}

type ComparisonPayload struct {
	ExtractedCapEx     float64 `json:"extracted_capex"`
	ExtractedOperating float64 `json:"extracted_operating"`
	ExtractedOther     float64 `json:"extracted_other"`
	ModeledCapEx       float64 `json:"modeled_capex"`
	VarianceFraction   float64 `json:"variance_fraction"`
}

func FromDocument(doc *model.Document, cmp *docparse.Comparison) DocumentResponse {
	out := DocumentResponse{
		ID:         doc.ID,
		ProjectID:  doc.ProjectID,
		Filename:   doc.Filename,
		UploadedAt: doc.UploadedAt,
		Items:      make([]CostItemPayload, 0, len(doc.Items)),
	}
	for _, item := range doc.Items {
		out.Items = append(out.Items, CostItemPayload{
			Label:    item.Label,
			Category: string(item.Category),
			Quantity: item.Quantity,
			UnitCost: item.UnitCost,
			Total:    item.Total,
		})
	}
	if cmp != nil {
		out.Comparison = &ComparisonPayload{
			ExtractedCapEx:     cmp.ExtractedCapEx,
			ExtractedOperating: cmp.ExtractedOperating,
			ExtractedOther:     cmp.ExtractedOther,
			ModeledCapEx:       cmp.ModeledCapEx,
			VarianceFraction:   cmp.VarianceFraction,
		}
	}
	return out
}

// SensitivityResponse carries the ranked scenario grid.
type SensitivityResponse struct {
	Cells []SensitivityCell `json:"cells"`
}

type SensitivityCell struct {
	Rank            int         `json:"rank"`
	PeakUtilization float64     `json:"peak_utilization"`
	ChargingRate    float64     `json:"charging_rate"`
	NPV             float64     `json:"npv"`
	IRR             interface{} `json:"irr"`
	LCOC            interface{} `json:"lcoc"`
}

func FromCells(ranked []analysis.Cell) SensitivityResponse {
	out := SensitivityResponse{Cells: make([]SensitivityCell, 0, len(ranked))}
	for i, cell := range ranked {
		sc := SensitivityCell{
			Rank:            i + 1,
			PeakUtilization: cell.PeakUtilization,
			ChargingRate:    cell.ChargingRate,
			NPV:             cell.NPV,
			IRR:             IRRUndetermined,
			LCOC:            LCOCUndefined,
		}
		if cell.IRRStatus == dcf.IRRDetermined {
			sc.IRR = cell.IRR
		}
		if cell.LCOCDefined {
			sc.LCOC = cell.LCOC
		}
		out.Cells = append(out.Cells, sc)
	}
	return out
}

// AssumptionsResponse exposes the server's configured deployment assumptions.
type AssumptionsResponse struct {
	ChargerPowerKW             float64   `json:"charger_power_kw"`
	HoursPerDay                float64   `json:"hours_per_day"`
	DaysPerYear                float64   `json:"days_per_year"`
	EmissionFactorTonnesPerKWh float64   `json:"emission_factor_tonnes_per_kwh"`
	RampFactors                []float64 `json:"ramp_factors"`
}

func FromAssumptions(a model.Assumptions) AssumptionsResponse {
	return AssumptionsResponse{
		ChargerPowerKW:             a.ChargerPowerKW,
		HoursPerDay:                a.HoursPerDay,
		DaysPerYear:                a.DaysPerYear,
		EmissionFactorTonnesPerKWh: a.EmissionFactorTonnesPerKWh,
		RampFactors:                a.RampFactors,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
