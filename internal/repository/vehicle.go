package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle and assigns its id.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by id.
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)

	// GetAll retrieves all vehicles ordered by truck number.
	GetAll(ctx context.Context) ([]*domain.Vehicle, error)

	// Delete removes a vehicle.
	Delete(ctx context.Context, id int64) error
}
