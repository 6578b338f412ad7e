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

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RateCardRequest carries a driver's per-unit rates as decimal strings.
type RateCardRequest struct {
	KmRate              string `json:"km_rate"`
	SideLoadingRate     string `json:"side_loading_rate"`
	RoofLoadingRate     string `json:"roof_loading_rate"`
	RegularDowntimeRate string `json:"regular_downtime_rate"`
	ForcedDowntimeRate  string `json:"forced_downtime_rate"`
}

func (r RateCardRequest) toDomain() (domain.RateCard, error) {
	var rates domain.RateCard
	var err error

	if rates.KmRate, err = decimal.NewFromString(r.KmRate); err != nil {
		return rates, err
	}
	if rates.SideLoadingRate, err = decimal.NewFromString(r.SideLoadingRate); err != nil {
		return rates, err
	}
	if rates.RoofLoadingRate, err = decimal.NewFromString(r.RoofLoadingRate); err != nil {
		return rates, err
	}
	if rates.RegularDowntimeRate, err = decimal.NewFromString(r.RegularDowntimeRate); err != nil {
		return rates, err
	}
	if rates.ForcedDowntimeRate, err = decimal.NewFromString(r.ForcedDowntimeRate); err != nil {
		return rates, err
	}

	return rates, nil
}

// CreateDriverRequest is the body for registering a driver.
type CreateDriverRequest struct {
	Name      string          `json:"name"`
	Rates     RateCardRequest `json:"rates"`
	VehicleID int64           `json:"vehicle_id"`
	Notes     string          `json:"notes"`
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	KmRate              string `json:"km_rate"`
	SideLoadingRate     string `json:"side_loading_rate"`
	RoofLoadingRate     string `json:"roof_loading_rate"`
	RegularDowntimeRate string `json:"regular_downtime_rate"`
	ForcedDowntimeRate  string `json:"forced_downtime_rate"`
	VehicleID           int64  `json:"vehicle_id,omitempty"`
	Notes               string `json:"notes,omitempty"`
	CreatedAt           string `json:"created_at"`
}

func driverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:                  d.ID,
		Name:                d.Name,
		KmRate:              d.Rates.KmRate.String(),
		SideLoadingRate:     d.Rates.SideLoadingRate.String(),
		RoofLoadingRate:     d.Rates.RoofLoadingRate.String(),
		RegularDowntimeRate: d.Rates.RegularDowntimeRate.String(),
		ForcedDowntimeRate:  d.Rates.ForcedDowntimeRate.String(),
		VehicleID:           d.VehicleID,
		Notes:               d.Notes,
		CreatedAt:           d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rates, err := req.Rates.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rate card"})
		return
	}

	driver, err := h.driverService.CreateDriver(c.Request.Context(), service.CreateDriverRequest{
		Name:      req.Name,
		Rates:     rates,
		VehicleID: req.VehicleID,
		Notes:     req.Notes,
		AccountID: middleware.AccountID(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, driverResponse(driver))
}

// GetAll handles GET /v1/drivers
func (h *DriverHandler) GetAll(c *gin.Context) {
	drivers, err := h.driverService.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		response = append(response, driverResponse(driver))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid driver id"})
		return
	}

	driver, err := h.driverService.GetDriver(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, driverResponse(driver))
}

// UpdateRates handles PUT /v1/drivers/:id/rates
func (h *DriverHandler) UpdateRates(c *gin.Context) {
	driverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid driver id"})
		return
	}

	var req RateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rates, err := req.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid rate card"})
		return
	}

	if err := h.driverService.UpdateRates(c.Request.Context(), driverID, rates, middleware.AccountID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"updated": true})
}
