package handlers

import (
	"errors"

	"chargemodel/internal/api/models"
	"chargemodel/internal/model"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondEngineError maps a valuation failure to a status code. Validation
// rejections are the caller's to fix; anything else is unexpected.
func respondEngineError(c *gin.Context, err error) {
	var invalid *model.InvalidInputError
	if errors.As(err, &invalid) {
		respondError(c, 400, "INVALID_INPUT", err.Error())
		return
	}
	respondError(c, 500, "CALCULATION_ERROR", err.Error())
}
