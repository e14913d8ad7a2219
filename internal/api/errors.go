package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/core"
)

// handleError writes the response for a service error. Unexpected errors are
// logged and answered with a generic 500.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	var vErr *core.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: vErr.Fields})
	case errors.Is(err, core.ErrServiceNotFound),
		errors.Is(err, core.ErrSlotNotFound),
		errors.Is(err, core.ErrBookingNotFound),
		errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found", Details: err.Error()})
	case errors.Is(err, core.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Slot is no longer available", Details: err.Error()})
	case errors.Is(err, core.ErrSlotAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Slot already exists", Details: err.Error()})
	case errors.Is(err, core.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Email is already registered"})
	case errors.Is(err, core.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
	case errors.Is(err, core.ErrNoRole):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrNoRole.Error()})
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "You do not have permission to perform this action"})
	default:
		logger.Error("Request failed",
			zap.String("path", c.FullPath()), zap.String("method", c.Request.Method), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	}
}
