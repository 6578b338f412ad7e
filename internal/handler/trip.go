package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/middleware"
	"fleetpay/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// BreakdownResponse itemizes a trip's pay components.
type BreakdownResponse struct {
	KmPayment              string `json:"km_payment"`
	SideLoadingPayment     string `json:"side_loading_payment"`
	RoofLoadingPayment     string `json:"roof_loading_payment"`
	RegularDowntimePayment string `json:"regular_downtime_payment"`
	ForcedDowntimePayment  string `json:"forced_downtime_payment"`
	Total                  string `json:"total"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID           int64             `json:"trip_id"`
	DriverID         int64             `json:"driver_id"`
	VehicleID        int64             `json:"vehicle_id"`
	LoadingCity      string            `json:"loading_city"`
	UnloadingCity    string            `json:"unloading_city"`
	DistanceKm       string            `json:"distance_km"`
	SideLoadingCount int64             `json:"side_loading_count"`
	RoofLoadingCount int64             `json:"roof_loading_count"`
	Breakdown        BreakdownResponse `json:"breakdown"`
	TotalDue         string            `json:"total_due"`
	PaidAmount       string            `json:"paid_amount"`
	Outstanding      string            `json:"outstanding"`
	Status           string            `json:"status"`
	CreatedAt        string            `json:"created_at"`
}

// DowntimeResponse is the HTTP representation of a downtime entry.
type DowntimeResponse struct {
	ID        int64  `json:"id"`
	TripID    int64  `json:"trip_id"`
	Kind      string `json:"kind"`
	Hours     string `json:"hours"`
	Payment   string `json:"payment"`
	CreatedAt string `json:"created_at"`
}

func tripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		TripID:           trip.ID,
		DriverID:         trip.DriverID,
		VehicleID:        trip.VehicleID,
		LoadingCity:      trip.LoadingCity,
		UnloadingCity:    trip.UnloadingCity,
		DistanceKm:       trip.DistanceKm.String(),
		SideLoadingCount: trip.SideLoadingCount,
		RoofLoadingCount: trip.RoofLoadingCount,
		Breakdown: BreakdownResponse{
			KmPayment:              trip.Breakdown.KmPayment.String(),
			SideLoadingPayment:     trip.Breakdown.SideLoadingPayment.String(),
			RoofLoadingPayment:     trip.Breakdown.RoofLoadingPayment.String(),
			RegularDowntimePayment: trip.Breakdown.RegularDowntimePayment.String(),
			ForcedDowntimePayment:  trip.Breakdown.ForcedDowntimePayment.String(),
			Total:                  trip.Breakdown.Total.String(),
		},
		TotalDue:    trip.TotalDue.String(),
		PaidAmount:  trip.PaidAmount.String(),
		Outstanding: trip.Outstanding().String(),
		Status:      string(trip.Status()),
		CreatedAt:   trip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func downtimeResponse(d *domain.Downtime) DowntimeResponse {
	return DowntimeResponse{
		ID:        d.ID,
		TripID:    d.TripID,
		Kind:      string(d.Kind),
		Hours:     d.Hours.String(),
		Payment:   d.Payment.String(),
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetAll handles GET /v1/trips?days=7
func (h *TripHandler) GetAll(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid days parameter"})
			return
		}
		days = parsed
	}

	trips, err := h.tripService.History(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, tripResponse(trip))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trip id"})
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetDowntimes handles GET /v1/trips/:id/downtimes
func (h *TripHandler) GetDowntimes(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trip id"})
		return
	}

	downtimes, err := h.tripService.GetTripDowntimes(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DowntimeResponse, 0, len(downtimes))
	for _, d := range downtimes {
		response = append(response, downtimeResponse(d))
	}

	respondJSON(c, http.StatusOK, response)
}

// EditTripRequest is the body for editing a trip's measures. Omitted fields
// are left unchanged.
type EditTripRequest struct {
	DistanceKm       *string `json:"distance_km"`
	SideLoadingCount *int64  `json:"side_loading_count"`
	RoofLoadingCount *int64  `json:"roof_loading_count"`
}

// EditTrip handles PATCH /v1/trips/:id
func (h *TripHandler) EditTrip(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trip id"})
		return
	}

	var req EditTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	edit := service.EditTripRequest{
		TripID:           tripID,
		SideLoadingCount: req.SideLoadingCount,
		RoofLoadingCount: req.RoofLoadingCount,
		AccountID:        middleware.AccountID(c),
	}

	if req.DistanceKm != nil {
		km, err := decimal.NewFromString(*req.DistanceKm)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid distance_km"})
			return
		}
		edit.DistanceKm = &km
	}

	trip, err := h.tripService.EditTrip(c.Request.Context(), edit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// AddDowntimeRequest is the body for billing extra idle hours on a trip.
type AddDowntimeRequest struct {
	Kind  string `json:"kind"`
	Hours string `json:"hours"`
}

// AddDowntime handles POST /v1/trips/:id/downtimes
func (h *TripHandler) AddDowntime(c *gin.Context) {
	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid trip id"})
		return
	}

	var req AddDowntimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid hours"})
		return
	}

	downtime, err := h.tripService.AddDowntime(c.Request.Context(), service.AddDowntimeRequest{
		TripID:    tripID,
		Kind:      domain.DowntimeKind(req.Kind),
		Hours:     hours,
		AccountID: middleware.AccountID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, downtimeResponse(downtime))
}
