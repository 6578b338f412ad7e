package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, name, km_rate, side_loading_rate, roof_loading_rate,
	regular_downtime_rate, forced_downtime_rate, COALESCE(vehicle_id, 0), notes, created_at`

// Create persists a new driver and assigns its id.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (name, km_rate, side_loading_rate, roof_loading_rate,
			regular_downtime_rate, forced_downtime_rate, vehicle_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	var vehicleID sql.NullInt64
	if driver.VehicleID != 0 {
		vehicleID = sql.NullInt64{Int64: driver.VehicleID, Valid: true}
	}

	return r.q.QueryRowContext(ctx, query,
		driver.Name,
		driver.Rates.KmRate,
		driver.Rates.SideLoadingRate,
		driver.Rates.RoofLoadingRate,
		driver.Rates.RegularDowntimeRate,
		driver.Rates.ForcedDowntimeRate,
		vehicleID,
		driver.Notes,
	).Scan(&driver.ID, &driver.CreatedAt)
}

func scanDriver(row interface{ Scan(...any) error }) (*domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Rates.KmRate,
		&d.Rates.SideLoadingRate,
		&d.Rates.RoofLoadingRate,
		&d.Rates.RegularDowntimeRate,
		&d.Rates.ForcedDowntimeRate,
		&d.VehicleID,
		&d.Notes,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID retrieves a driver by id.
func (r *DriverRepository) GetByID(ctx context.Context, id int64) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

// GetAll retrieves all drivers ordered by name.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}

	return drivers, rows.Err()
}

// UpdateRates replaces a driver's rate card.
func (r *DriverRepository) UpdateRates(ctx context.Context, id int64, rates domain.RateCard) error {
	query := `
		UPDATE drivers
		SET km_rate = $1, side_loading_rate = $2, roof_loading_rate = $3,
			regular_downtime_rate = $4, forced_downtime_rate = $5
		WHERE id = $6
	`

	result, err := r.q.ExecContext(ctx, query,
		rates.KmRate,
		rates.SideLoadingRate,
		rates.RoofLoadingRate,
		rates.RegularDowntimeRate,
		rates.ForcedDowntimeRate,
		id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
