package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// VehicleService handles the vehicle registry.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	auditRepo   repository.AuditLogRepository
	logger      *zap.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	auditRepo repository.AuditLogRepository,
	logger *zap.Logger,
) *VehicleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// CreateVehicleRequest contains the parameters for registering a vehicle.
type CreateVehicleRequest struct {
	TruckNumber   string
	TrailerNumber string
	Notes         string
	AccountID     int64
}

// CreateVehicle registers a truck/trailer pair.
func (s *VehicleService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*domain.Vehicle, error) {
	if req.TruckNumber == "" {
		return nil, ErrInvalidTruckNumber
	}

	vehicle := &domain.Vehicle{
		TruckNumber:   req.TruckNumber,
		TrailerNumber: req.TrailerNumber,
		Notes:         req.Notes,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: req.AccountID,
		Action:    "vehicle.created",
		Details:   fmt.Sprintf("vehicle=%d truck=%s", vehicle.ID, vehicle.TruckNumber),
	})

	s.logger.Info("vehicle created",
		zap.Int64("vehicle_id", vehicle.ID),
		zap.String("truck_number", vehicle.TruckNumber),
	)

	return vehicle, nil
}

// GetVehicle retrieves a vehicle by id.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID int64) (*domain.Vehicle, error) {
	if vehicleID == 0 {
		return nil, ErrInvalidVehicleID
	}

	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

// ListVehicles retrieves all vehicles ordered by truck number.
func (s *VehicleService) ListVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetAll(ctx)
}

// DeleteVehicle removes a vehicle from the registry.
func (s *VehicleService) DeleteVehicle(ctx context.Context, vehicleID, accountID int64) error {
	if vehicleID == 0 {
		return ErrInvalidVehicleID
	}

	if err := s.vehicleRepo.Delete(ctx, vehicleID); err != nil {
		return err
	}

	_ = s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: accountID,
		Action:    "vehicle.deleted",
		Details:   fmt.Sprintf("vehicle=%d", vehicleID),
	})

	return nil
}
