// Package analysis runs the valuation engine across input grids so the
// dashboard can show which levers move a project's economics.
package analysis

import (
	"sort"

	"chargemodel/internal/dcf"
	"chargemodel/internal/model"
)

// Cell is one scenario in a sensitivity grid: the varied inputs plus the
// resulting summary metrics.
type Cell struct {
	PeakUtilization float64
	ChargingRate    float64

	NPV         float64
	IRR         float64
	IRRStatus   dcf.IRRStatus
	LCOC        float64
	LCOCDefined bool
}

// Grid evaluates the engine over every utilization x charging-rate
// combination, holding all other inputs fixed. The base inputs must be valid;
// grid values outside the input domain fail the run.
func Grid(e *dcf.Engine, base model.ProjectInputs, utilizations, rates []float64) ([]Cell, error) {
	cells := make([]Cell, 0, len(utilizations)*len(rates))
	for _, u := range utilizations {
		for _, r := range rates {
			p := base
			p.PeakUtilization = u
			p.ChargingRate = r

			res, err := e.Valuation(p)
			if err != nil {
				return nil, err
			}
			cells = append(cells, Cell{
				PeakUtilization: u,
				ChargingRate:    r,
				NPV:             res.NPV,
				IRR:             res.IRR,
				IRRStatus:       res.IRRStatus,
				LCOC:            res.LCOC,
				LCOCDefined:     res.LCOCDefined,
			})
		}
	}
	return cells, nil
}

// Rank orders cells best-first by NPV. The input slice is not modified.
func Rank(cells []Cell) []Cell {
	ranked := append([]Cell(nil), cells...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NPV > ranked[j].NPV
	})
	return ranked
}
