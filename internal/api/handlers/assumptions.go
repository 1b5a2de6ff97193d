package handlers

import (
	"net/http"

	"chargemodel/internal/api/models"
	"chargemodel/internal/model"

	"github.com/gin-gonic/gin"
)

// AssumptionsHandler exposes the server's configured deployment assumptions
// so the dashboard can show what the model is built on.
type AssumptionsHandler struct {
	assumptions model.Assumptions
}

func NewAssumptionsHandler(assumptions model.Assumptions) *AssumptionsHandler {
	return &AssumptionsHandler{assumptions: assumptions}
}

// Get handles GET /api/v1/assumptions.
func (h *AssumptionsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, models.FromAssumptions(h.assumptions))
}
