package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// DriverRepository defines the persistence operations for drivers and their
// rate cards.
type DriverRepository interface {
	// Create persists a new driver and assigns its id.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by id.
	GetByID(ctx context.Context, id int64) (*domain.Driver, error)

	// GetAll retrieves all drivers ordered by name.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// UpdateRates replaces a driver's rate card. Existing trip totals are
	// unaffected.
	UpdateRates(ctx context.Context, id int64, rates domain.RateCard) error
}
