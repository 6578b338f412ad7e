package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// DriverService handles the driver registry and rate cards.
type DriverService struct {
	driverRepo  repository.DriverRepository
	vehicleRepo repository.VehicleRepository
	auditRepo   repository.AuditLogRepository
	logger      *zap.Logger
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditLogRepository,
	logger *zap.Logger,
) *DriverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// CreateDriverRequest contains the parameters for registering a driver.
type CreateDriverRequest struct {
	Name      string
	Rates     domain.RateCard
	VehicleID int64 // optional, 0 for none
	Notes     string
	AccountID int64
}

// CreateDriver registers a driver with their rate card.
func (s *DriverService) CreateDriver(ctx context.Context, req CreateDriverRequest) (*domain.Driver, error) {
	if req.Name == "" {
		return nil, ErrInvalidDriverName
	}

	if err := validateRates(req.Rates); err != nil {
		return nil, err
	}

	if req.VehicleID != 0 {
		if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
			return nil, err
		}
	}

	driver := &domain.Driver{
		Name:      req.Name,
		Rates:     req.Rates,
		VehicleID: req.VehicleID,
		Notes:     req.Notes,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: req.AccountID,
		Action:    "driver.created",
		Details:   fmt.Sprintf("driver=%d name=%s", driver.ID, driver.Name),
	})

	s.logger.Info("driver created",
		zap.Int64("driver_id", driver.ID),
		zap.String("name", driver.Name),
	)

	return driver, nil
}

// GetDriver retrieves a driver by id.
func (s *DriverService) GetDriver(ctx context.Context, driverID int64) (*domain.Driver, error) {
	if driverID == 0 {
		return nil, ErrInvalidDriverID
	}

	return s.driverRepo.GetByID(ctx, driverID)
}

// ListDrivers retrieves all drivers ordered by name.
func (s *DriverService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// UpdateRates replaces a driver's rate card. Totals of trips already entered
// are not recomputed.
func (s *DriverService) UpdateRates(ctx context.Context, driverID int64, rates domain.RateCard, accountID int64) error {
	if driverID == 0 {
		return ErrInvalidDriverID
	}

	if err := validateRates(rates); err != nil {
		return err
	}

	if err := s.driverRepo.UpdateRates(ctx, driverID, rates); err != nil {
		return err
	}

	_ = s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: accountID,
		Action:    "driver.rates_updated",
		Details:   fmt.Sprintf("driver=%d", driverID),
	})

	s.logger.Info("driver rates updated", zap.Int64("driver_id", driverID))

	return nil
}

func validateRates(rates domain.RateCard) error {
	if rates.KmRate.IsNegative() ||
		rates.SideLoadingRate.IsNegative() ||
		rates.RoofLoadingRate.IsNegative() ||
		rates.RegularDowntimeRate.IsNegative() ||
		rates.ForcedDowntimeRate.IsNegative() {
		return ErrInvalidRate
	}
	return nil
}
