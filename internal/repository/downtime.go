package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// DowntimeRepository defines the persistence operations for downtimes.
// Rows are append-only.
type DowntimeRepository interface {
	// Create persists a new downtime and assigns its id.
	Create(ctx context.Context, downtime *domain.Downtime) error

	// ListByTrip retrieves a trip's downtimes in creation order.
	ListByTrip(ctx context.Context, tripID int64) ([]*domain.Downtime, error)
}
