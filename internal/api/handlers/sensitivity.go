package handlers

import (
	"net/http"

	"chargemodel/internal/analysis"
	"chargemodel/internal/api/models"
	"chargemodel/internal/dcf"
	"chargemodel/internal/model"

	"github.com/gin-gonic/gin"
)

// SensitivityHandler runs the engine across utilization/price grids.
type SensitivityHandler struct {
	assumptions model.Assumptions
	irr         dcf.IRRParams
}

func NewSensitivityHandler(assumptions model.Assumptions, irr dcf.IRRParams) *SensitivityHandler {
	return &SensitivityHandler{assumptions: assumptions, irr: irr}
}

// Run handles POST /api/v1/sensitivity.
func (h *SensitivityHandler) Run(c *gin.Context) {
	var req models.SensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if len(req.Utilizations) == 0 || len(req.ChargingRates) == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "utilizations and charging_rates must be non-empty")
		return
	}

	engine := dcf.New(req.Assumptions.MergeOver(h.assumptions), h.irr)
	cells, err := analysis.Grid(engine, req.Inputs.ToModel(), req.Utilizations, req.ChargingRates)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FromCells(analysis.Rank(cells)))
}
