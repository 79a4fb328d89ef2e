package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"diamond-mines-backend/internal/services"
)

func gateErrorStatus(kind services.ErrorKind) int {
	switch kind {
	case services.KindInput:
		return http.StatusBadRequest
	case services.KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusServiceUnavailable
	}
}

func writeError(c *gin.Context, err error) {
	var gateErr *services.GateError
	switch {
	case errors.As(err, &gateErr):
		c.JSON(gateErrorStatus(gateErr.Kind), gin.H{
			"error":   gateErr.Title,
			"code":    gateErr.Code,
			"kind":    gateErr.Kind,
			"details": gateErr.Message,
		})
	case errors.Is(err, services.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Action not allowed",
			"details": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"details": err.Error(),
		})
	}
}
