package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetpay/internal/middleware"
	"fleetpay/internal/repository"
	"fleetpay/internal/service"
)

// LedgerHandler handles HTTP requests for payments and outstanding balances.
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// PaymentEventResponse is the HTTP representation of a ledger mutation.
type PaymentEventResponse struct {
	EventID         string `json:"event_id"`
	TripID          int64  `json:"trip_id"`
	Amount          string `json:"amount"`
	ResultingPaid   string `json:"resulting_paid"`
	ResultingStatus string `json:"resulting_status"`
}

// ApplyPaymentRequest is the body for recording a partial payment.
type ApplyPaymentRequest struct {
	Amount string `json:"amount"`
}

// ApplyPayment handles POST /v1/trips/:id/payments
func (h *LedgerHandler) ApplyPayment(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trip id"})
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
		return
	}

	event, err := h.ledgerService.ApplyPayment(c.Request.Context(), service.ApplyPaymentRequest{
		TripID:    tripID,
		Amount:    amount,
		AccountID: middleware.AccountID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentEventResponse{
		EventID:         event.ID,
		TripID:          event.TripID,
		Amount:          event.Amount.String(),
		ResultingPaid:   event.ResultingPaid.String(),
		ResultingStatus: string(event.ResultingStatus),
	})
}

// MarkFullyPaid handles POST /v1/trips/:id/settle
func (h *LedgerHandler) MarkFullyPaid(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trip id"})
		return
	}

	event, err := h.ledgerService.MarkFullyPaid(c.Request.Context(), service.MarkFullyPaidRequest{
		TripID:    tripID,
		AccountID: middleware.AccountID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentEventResponse{
		EventID:         event.ID,
		TripID:          event.TripID,
		Amount:          event.Amount.String(),
		ResultingPaid:   event.ResultingPaid.String(),
		ResultingStatus: string(event.ResultingStatus),
	})
}

// SettleDriver handles POST /v1/drivers/:id/settle
func (h *LedgerHandler) SettleDriver(c *gin.Context) {
	driverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid driver id"})
		return
	}

	events, err := h.ledgerService.MarkAllForDriverFullyPaid(c.Request.Context(), driverID, middleware.AccountID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentEventResponse, 0, len(events))
	for _, event := range events {
		response = append(response, PaymentEventResponse{
			EventID:         event.ID,
			TripID:          event.TripID,
			Amount:          event.Amount.String(),
			ResultingPaid:   event.ResultingPaid.String(),
			ResultingStatus: string(event.ResultingStatus),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// DriverDebtResponse is one row of the per-driver outstanding view.
type DriverDebtResponse struct {
	DriverID    int64  `json:"driver_id"`
	DriverName  string `json:"driver_name"`
	UnpaidTrips int64  `json:"unpaid_trips"`
	Outstanding string `json:"outstanding"`
}

// OutstandingResponse is the aggregate outstanding view.
type OutstandingResponse struct {
	Total   string               `json:"total"`
	Drivers []DriverDebtResponse `json:"drivers"`
}

// Outstanding handles GET /v1/ledger/outstanding
func (h *LedgerHandler) Outstanding(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.ledgerService.OutstandingTotal(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	debts, err := h.ledgerService.OutstandingByDriver(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	response := OutstandingResponse{
		Total:   total.String(),
		Drivers: make([]DriverDebtResponse, 0, len(debts)),
	}
	for _, debt := range debts {
		response.Drivers = append(response.Drivers, DriverDebtResponse{
			DriverID:    debt.DriverID,
			DriverName:  debt.DriverName,
			UnpaidTrips: debt.UnpaidTrips,
			Outstanding: debt.Outstanding.String(),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// DriverLedgerStatsResponse is one row of the detailed per-driver report.
type DriverLedgerStatsResponse struct {
	DriverID      int64  `json:"driver_id"`
	DriverName    string `json:"driver_name"`
	UnpaidTrips   int64  `json:"unpaid_trips"`
	UnpaidAmount  string `json:"unpaid_amount"`
	PartiallyPaid string `json:"partially_paid"`
	PaidTrips     int64  `json:"paid_trips"`
	PaidAmount    string `json:"paid_amount"`
	TotalTrips    int64  `json:"total_trips"`
	TotalAmount   string `json:"total_amount"`
}

// Stats handles GET /v1/ledger/stats
func (h *LedgerHandler) Stats(c *gin.Context) {
	stats, err := h.ledgerService.LedgerStatsByDriver(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverLedgerStatsResponse, 0, len(stats))
	for _, row := range stats {
		response = append(response, statsResponse(row))
	}

	respondJSON(c, http.StatusOK, response)
}

func statsResponse(row repository.DriverLedgerStats) DriverLedgerStatsResponse {
	return DriverLedgerStatsResponse{
		DriverID:      row.DriverID,
		DriverName:    row.DriverName,
		UnpaidTrips:   row.UnpaidTrips,
		UnpaidAmount:  row.UnpaidAmount.String(),
		PartiallyPaid: row.PartiallyPaid.String(),
		PaidTrips:     row.PaidTrips,
		PaidAmount:    row.PaidAmount.String(),
		TotalTrips:    row.TotalTrips,
		TotalAmount:   row.TotalAmount.String(),
	}
}

// Unpaid handles GET /v1/ledger/unpaid?driver_id=3
func (h *LedgerHandler) Unpaid(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("driver_id"); raw != "" {
		driverID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid driver_id"})
			return
		}

		unpaid, err := h.ledgerService.ListUnpaidByDriver(ctx, driverID)
		if err != nil {
			respondError(c, err)
			return
		}

		response := make([]TripResponse, 0, len(unpaid))
		for _, trip := range unpaid {
			response = append(response, tripResponse(trip))
		}
		respondJSON(c, http.StatusOK, response)
		return
	}

	unpaid, err := h.ledgerService.ListUnpaid(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(unpaid))
	for _, trip := range unpaid {
		response = append(response, tripResponse(trip))
	}
	respondJSON(c, http.StatusOK, response)
}
