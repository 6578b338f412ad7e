package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/form"
	"fleetpay/internal/repository"
	"fleetpay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, form.ErrNoActiveSession),
		errors.Is(err, form.ErrFlowUnknown):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidDriverName),
		errors.Is(err, service.ErrInvalidCity),
		errors.Is(err, service.ErrInvalidDistance),
		errors.Is(err, service.ErrInvalidLoadingCount),
		errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, service.ErrInvalidDowntimeHours),
		errors.Is(err, service.ErrInvalidDowntimeKind),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidTruckNumber):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrAmountExceedsBalance),
		errors.Is(err, service.ErrLastAdmin),
		errors.Is(err, form.ErrNotAwaitingConfirmation):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
