package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/service"
)

// ReportHandler serves CSV downloads of the ledger views.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// UnpaidTrips handles GET /v1/reports/unpaid.csv
func (h *ReportHandler) UnpaidTrips(c *gin.Context) {
	data, err := h.reportService.UnpaidTripsCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="unpaid_trips.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// TripHistory handles GET /v1/reports/trips.csv?days=30
func (h *ReportHandler) TripHistory(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid days parameter"})
			return
		}
		days = parsed
	}

	data, err := h.reportService.TripHistoryCSV(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="trips.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// DriverLedger handles GET /v1/reports/drivers.csv
func (h *ReportHandler) DriverLedger(c *gin.Context) {
	data, err := h.reportService.DriverLedgerCSV(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="driver_ledger.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
