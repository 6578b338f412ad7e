package postgres

import (
	"context"
	"database/sql"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// DowntimeRepository is a PostgreSQL implementation of repository.DowntimeRepository.
type DowntimeRepository struct {
	q Querier
}

// NewDowntimeRepository creates a new PostgreSQL downtime repository.
func NewDowntimeRepository(db *sql.DB) *DowntimeRepository {
	return &DowntimeRepository{q: db}
}

// NewDowntimeRepositoryWithTx creates a downtime repository using a transaction.
func NewDowntimeRepositoryWithTx(tx *sql.Tx) *DowntimeRepository {
	return &DowntimeRepository{q: tx}
}

// Create persists a new downtime and assigns its id.
func (r *DowntimeRepository) Create(ctx context.Context, downtime *domain.Downtime) error {
	query := `
		INSERT INTO downtimes (trip_id, kind, hours, payment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	return r.q.QueryRowContext(ctx, query,
		downtime.TripID,
		string(downtime.Kind),
		downtime.Hours,
		downtime.Payment,
	).Scan(&downtime.ID, &downtime.CreatedAt)
}

// ListByTrip retrieves a trip's downtimes in creation order.
func (r *DowntimeRepository) ListByTrip(ctx context.Context, tripID int64) ([]*domain.Downtime, error) {
	query := `
		SELECT id, trip_id, kind, hours, payment, created_at
		FROM downtimes WHERE trip_id = $1 ORDER BY id
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downtimes []*domain.Downtime
	for rows.Next() {
		var d domain.Downtime
		if err := rows.Scan(&d.ID, &d.TripID, &d.Kind, &d.Hours, &d.Payment, &d.CreatedAt); err != nil {
			return nil, err
		}
		downtimes = append(downtimes, &d)
	}

	return downtimes, rows.Err()
}

// Ensure DowntimeRepository implements repository.DowntimeRepository.
var _ repository.DowntimeRepository = (*DowntimeRepository)(nil)
