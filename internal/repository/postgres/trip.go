package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, driver_id, vehicle_id, loading_city, unloading_city,
	distance_km, side_loading_count, roof_loading_count,
	km_payment, side_loading_payment, roof_loading_payment,
	regular_downtime_payment, forced_downtime_payment,
	total_due, paid_amount, paid, created_at`

// Create persists a new trip and assigns its id.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (driver_id, vehicle_id, loading_city, unloading_city,
			distance_km, side_loading_count, roof_loading_count,
			km_payment, side_loading_payment, roof_loading_payment,
			regular_downtime_payment, forced_downtime_payment,
			total_due, paid_amount, paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`

	return r.q.QueryRowContext(ctx, query,
		trip.DriverID,
		trip.VehicleID,
		trip.LoadingCity,
		trip.UnloadingCity,
		trip.DistanceKm,
		trip.SideLoadingCount,
		trip.RoofLoadingCount,
		trip.Breakdown.KmPayment,
		trip.Breakdown.SideLoadingPayment,
		trip.Breakdown.RoofLoadingPayment,
		trip.Breakdown.RegularDowntimePayment,
		trip.Breakdown.ForcedDowntimePayment,
		trip.TotalDue,
		trip.PaidAmount,
		trip.Paid,
	).Scan(&trip.ID, &trip.CreatedAt)
}

func scanTrip(row interface{ Scan(...any) error }) (*domain.Trip, error) {
	var t domain.Trip
	err := row.Scan(
		&t.ID,
		&t.DriverID,
		&t.VehicleID,
		&t.LoadingCity,
		&t.UnloadingCity,
		&t.DistanceKm,
		&t.SideLoadingCount,
		&t.RoofLoadingCount,
		&t.Breakdown.KmPayment,
		&t.Breakdown.SideLoadingPayment,
		&t.Breakdown.RoofLoadingPayment,
		&t.Breakdown.RegularDowntimePayment,
		&t.Breakdown.ForcedDowntimePayment,
		&t.TotalDue,
		&t.PaidAmount,
		&t.Paid,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Breakdown.Total = t.Breakdown.KmPayment.
		Add(t.Breakdown.SideLoadingPayment).
		Add(t.Breakdown.RoofLoadingPayment).
		Add(t.Breakdown.RegularDowntimePayment).
		Add(t.Breakdown.ForcedDowntimePayment)
	return &t, nil
}

// GetByID retrieves a trip by id.
func (r *TripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByIDForUpdate retrieves a trip by id, locking the row for the duration
// of the surrounding transaction.
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *TripRepository) getOne(ctx context.Context, query string, id int64) (*domain.Trip, error) {
	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// List retrieves trips created at or after since, newest first. A zero since
// returns all trips.
func (r *TripRepository) List(ctx context.Context, since time.Time) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE created_at >= $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	return collectTrips(rows)
}

// ListUnpaid retrieves all trips not yet fully paid, newest first.
func (r *TripRepository) ListUnpaid(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE NOT paid ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectTrips(rows)
}

// ListUnpaidByDriver retrieves a driver's trips not yet fully paid.
func (r *TripRepository) ListUnpaidByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips
		WHERE driver_id = $1 AND NOT paid ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	return collectTrips(rows)
}

func collectTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Update replaces an existing trip row.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET driver_id = $1, vehicle_id = $2, loading_city = $3, unloading_city = $4,
			distance_km = $5, side_loading_count = $6, roof_loading_count = $7,
			km_payment = $8, side_loading_payment = $9, roof_loading_payment = $10,
			regular_downtime_payment = $11, forced_downtime_payment = $12,
			total_due = $13, paid_amount = $14, paid = $15
		WHERE id = $16
	`

	result, err := r.q.ExecContext(ctx, query,
		trip.DriverID,
		trip.VehicleID,
		trip.LoadingCity,
		trip.UnloadingCity,
		trip.DistanceKm,
		trip.SideLoadingCount,
		trip.RoofLoadingCount,
		trip.Breakdown.KmPayment,
		trip.Breakdown.SideLoadingPayment,
		trip.Breakdown.RoofLoadingPayment,
		trip.Breakdown.RegularDowntimePayment,
		trip.Breakdown.ForcedDowntimePayment,
		trip.TotalDue,
		trip.PaidAmount,
		trip.Paid,
		trip.ID,
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

// OutstandingTotal returns the summed outstanding balance across all
// non-fully-paid trips.
func (r *TripRepository) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_due - paid_amount), 0) FROM trips WHERE NOT paid`

	var total decimal.Decimal
	if err := r.q.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// OutstandingByDriver returns the outstanding balance per driver, for drivers
// with at least one unpaid trip.
func (r *TripRepository) OutstandingByDriver(ctx context.Context) ([]repository.DriverDebt, error) {
	query := `
		SELECT d.id, d.name, COUNT(t.id), COALESCE(SUM(t.total_due - t.paid_amount), 0)
		FROM trips t
		JOIN drivers d ON d.id = t.driver_id
		WHERE NOT t.paid
		GROUP BY d.id, d.name
		ORDER BY d.name
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debts []repository.DriverDebt
	for rows.Next() {
		var debt repository.DriverDebt
		if err := rows.Scan(&debt.DriverID, &debt.DriverName, &debt.UnpaidTrips, &debt.Outstanding); err != nil {
			return nil, err
		}
		debts = append(debts, debt)
	}

	return debts, rows.Err()
}

// LedgerStatsByDriver returns the detailed paid/unpaid breakdown per driver
// across all trips.
func (r *TripRepository) LedgerStatsByDriver(ctx context.Context) ([]repository.DriverLedgerStats, error) {
	query := `
		SELECT d.id, d.name,
			COUNT(t.id) FILTER (WHERE NOT t.paid),
			COALESCE(SUM(t.total_due - t.paid_amount) FILTER (WHERE NOT t.paid), 0),
			COALESCE(SUM(t.paid_amount) FILTER (WHERE NOT t.paid), 0),
			COUNT(t.id) FILTER (WHERE t.paid),
			COALESCE(SUM(t.total_due) FILTER (WHERE t.paid), 0),
			COUNT(t.id),
			COALESCE(SUM(t.total_due), 0)
		FROM drivers d
		LEFT JOIN trips t ON t.driver_id = d.id
		GROUP BY d.id, d.name
		ORDER BY d.name
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []repository.DriverLedgerStats
	for rows.Next() {
		var s repository.DriverLedgerStats
		err := rows.Scan(
			&s.DriverID,
			&s.DriverName,
			&s.UnpaidTrips,
			&s.UnpaidAmount,
			&s.PartiallyPaid,
			&s.PaidTrips,
			&s.PaidAmount,
			&s.TotalTrips,
			&s.TotalAmount,
		)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
