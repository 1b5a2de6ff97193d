package docparse

import "chargemodel/internal/model"

// Comparison reports extracted document costs against the modeled project.
// VarianceFraction is (extracted - modeled) / modeled gross CapEx; positive
// means the contractor quote came in above the model.
type Comparison struct {
	ExtractedCapEx     float64
	ExtractedOperating float64
	ExtractedOther     float64
	ModeledCapEx       float64
	VarianceFraction   float64
}

// Compare totals the extracted line items by category and measures the
// capital total against the project's modeled gross CapEx.
func Compare(items []model.CostLineItem, inputs model.ProjectInputs) Comparison {
	c := Comparison{ModeledCapEx: inputs.GrossCapEx()}
	for _, item := range items {
		switch item.Category {
		case model.CategoryCapital:
			c.ExtractedCapEx += item.Total
		case model.CategoryOperating:
			c.ExtractedOperating += item.Total
		default:
			c.ExtractedOther += item.Total
		}
	}
	if c.ModeledCapEx != 0 {
		c.VarianceFraction = (c.ExtractedCapEx - c.ModeledCapEx) / c.ModeledCapEx
	}
	return c
}
