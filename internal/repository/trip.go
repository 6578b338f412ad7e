package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

// DriverDebt is one row of the per-driver outstanding-balance view.
type DriverDebt struct {
	DriverID    int64
	DriverName  string
	UnpaidTrips int64
	Outstanding decimal.Decimal
}

// DriverLedgerStats is one row of the detailed per-driver report.
type DriverLedgerStats struct {
	DriverID      int64
	DriverName    string
	UnpaidTrips   int64
	UnpaidAmount  decimal.Decimal
	PartiallyPaid decimal.Decimal
	PaidTrips     int64
	PaidAmount    decimal.Decimal
	TotalTrips    int64
	TotalAmount   decimal.Decimal
}

// TripRepository defines the persistence operations for trips, including the
// derived ledger aggregates. Balances are always computed from the trip rows;
// nothing is stored separately that could drift.
type TripRepository interface {
	// Create persists a new trip and assigns its id.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by id.
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)

	// GetByIDForUpdate retrieves a trip by id, locking the row for the
	// duration of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Trip, error)

	// List retrieves trips created at or after since, newest first.
	// A zero since returns all trips.
	List(ctx context.Context, since time.Time) ([]*domain.Trip, error)

	// ListUnpaid retrieves all trips not yet fully paid, newest first.
	ListUnpaid(ctx context.Context) ([]*domain.Trip, error)

	// ListUnpaidByDriver retrieves a driver's trips not yet fully paid.
	ListUnpaidByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error)

	// Update replaces an existing trip row.
	Update(ctx context.Context, trip *domain.Trip) error

	// OutstandingTotal returns the summed outstanding balance across all
	// non-fully-paid trips.
	OutstandingTotal(ctx context.Context) (decimal.Decimal, error)

	// OutstandingByDriver returns the outstanding balance per driver, for
	// drivers with at least one unpaid trip.
	OutstandingByDriver(ctx context.Context) ([]DriverDebt, error)

	// LedgerStatsByDriver returns the detailed paid/unpaid breakdown per
	// driver across all trips.
	LedgerStatsByDriver(ctx context.Context) ([]DriverLedgerStats, error)
}
