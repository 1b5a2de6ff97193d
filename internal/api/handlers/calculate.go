package handlers

import (
	"net/http"

	"chargemodel/internal/api/models"
	"chargemodel/internal/dcf"
	"chargemodel/internal/model"

	"github.com/gin-gonic/gin"
)

// CalculateHandler runs one-off valuations from live form state.
type CalculateHandler struct {
	assumptions model.Assumptions
	irr         dcf.IRRParams
}

func NewCalculateHandler(assumptions model.Assumptions, irr dcf.IRRParams) *CalculateHandler {
	return &CalculateHandler{assumptions: assumptions, irr: irr}
}

// Calculate handles POST /api/v1/calculate.
func (h *CalculateHandler) Calculate(c *gin.Context) {
	var req models.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	engine := dcf.New(req.Assumptions.MergeOver(h.assumptions), h.irr)
	res, err := engine.Valuation(req.Inputs.ToModel())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FromResult(res))
}
