package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// Create persists a new vehicle and assigns its id.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (truck_number, trailer_number, notes)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.q.QueryRowContext(ctx, query,
		vehicle.TruckNumber,
		vehicle.TrailerNumber,
		vehicle.Notes,
	).Scan(&vehicle.ID, &vehicle.CreatedAt)
}

// GetByID retrieves a vehicle by id.
func (r *VehicleRepository) GetByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `
		SELECT id, truck_number, trailer_number, notes, created_at
		FROM vehicles WHERE id = $1
	`

	var v domain.Vehicle
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.TruckNumber,
		&v.TrailerNumber,
		&v.Notes,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &v, nil
}

// GetAll retrieves all vehicles ordered by truck number.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `
		SELECT id, truck_number, trailer_number, notes, created_at
		FROM vehicles ORDER BY truck_number
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.TruckNumber, &v.TrailerNumber, &v.Notes, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, &v)
	}

	return vehicles, rows.Err()
}

// Delete removes a vehicle.
func (r *VehicleRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
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

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
