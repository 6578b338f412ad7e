package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fleetpay/internal/domain"
	"fleetpay/internal/payroll"
	"fleetpay/internal/repository"
	"fleetpay/internal/repository/postgres"
)

// TripService handles trip entry, edits, downtime and history.
type TripService struct {
	db           *sql.DB
	tripRepo     repository.TripRepository
	driverRepo   repository.DriverRepository
	vehicleRepo  repository.VehicleRepository
	downtimeRepo repository.DowntimeRepository
	auditRepo    repository.AuditLogRepository
	logger       *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	downtimeRepo repository.DowntimeRepository,
	auditRepo repository.AuditLogRepository,
	logger *zap.Logger,
) *TripService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TripService{
		db:           db,
		tripRepo:     tripRepo,
		driverRepo:   driverRepo,
		vehicleRepo:  vehicleRepo,
		downtimeRepo: downtimeRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

// CreateTripRequest contains the parameters for entering a trip.
type CreateTripRequest struct {
	DriverID         int64
	VehicleID        int64
	LoadingCity      string
	UnloadingCity    string
	DistanceKm       decimal.Decimal
	SideLoadingCount int64
	RoofLoadingCount int64
	RegularHours     decimal.Decimal
	ForcedHours      decimal.Decimal
	AccountID        int64
}

// BuildTrip prices a trip request against a rate card. A trip priced to zero
// (all-zero rates) owes nothing, so it is born settled and never shows up in
// the unpaid listings or the outstanding aggregates.
func BuildTrip(req CreateTripRequest, rates domain.RateCard) *domain.Trip {
	breakdown := payroll.Compute(rates, payroll.Measures{
		DistanceKm:       req.DistanceKm,
		SideLoadingCount: req.SideLoadingCount,
		RoofLoadingCount: req.RoofLoadingCount,
		RegularHours:     req.RegularHours,
		ForcedHours:      req.ForcedHours,
	})

	return &domain.Trip{
		DriverID:         req.DriverID,
		VehicleID:        req.VehicleID,
		LoadingCity:      req.LoadingCity,
		UnloadingCity:    req.UnloadingCity,
		DistanceKm:       req.DistanceKm,
		SideLoadingCount: req.SideLoadingCount,
		RoofLoadingCount: req.RoofLoadingCount,
		Breakdown:        breakdown,
		TotalDue:         breakdown.Total,
		PaidAmount:       decimal.Zero,
		Paid:             breakdown.Total.IsZero(),
	}
}

// CreateTrip prices a trip against the driver's current rate card and
// persists it, together with any initial downtime entries, in one
// transaction. The computed total is fixed on the row; later rate-card edits
// do not touch it.
func (s *TripService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.DriverID == 0 {
		return nil, ErrInvalidDriverID
	}
	if req.VehicleID == 0 {
		return nil, ErrInvalidVehicleID
	}
	if req.LoadingCity == "" || req.UnloadingCity == "" {
		return nil, ErrInvalidCity
	}
	if !req.DistanceKm.IsPositive() {
		return nil, ErrInvalidDistance
	}
	if req.SideLoadingCount < 0 || req.RoofLoadingCount < 0 {
		return nil, ErrInvalidLoadingCount
	}
	if req.RegularHours.IsNegative() || req.ForcedHours.IsNegative() {
		return nil, ErrInvalidDowntimeHours
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	if _, err := s.vehicleRepo.GetByID(ctx, req.VehicleID); err != nil {
		return nil, err
	}

	trip := BuildTrip(req, driver.Rates)
	breakdown := trip.Breakdown

	// Use transaction to create the trip and its initial downtime rows.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txDowntimeRepo := postgres.NewDowntimeRepositoryWithTx(tx)
	txAuditRepo := postgres.NewAuditLogRepositoryWithTx(tx)

	if err = txTripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if req.RegularHours.IsPositive() {
		err = txDowntimeRepo.Create(ctx, &domain.Downtime{
			TripID:  trip.ID,
			Kind:    domain.DowntimeKindRegular,
			Hours:   req.RegularHours,
			Payment: breakdown.RegularDowntimePayment,
		})
		if err != nil {
			return nil, err
		}
	}

	if req.ForcedHours.IsPositive() {
		err = txDowntimeRepo.Create(ctx, &domain.Downtime{
			TripID:  trip.ID,
			Kind:    domain.DowntimeKindForced,
			Hours:   req.ForcedHours,
			Payment: breakdown.ForcedDowntimePayment,
		})
		if err != nil {
			return nil, err
		}
	}

	err = txAuditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: req.AccountID,
		Action:    "trip.created",
		Details:   fmt.Sprintf("trip=%d driver=%d total=%s", trip.ID, trip.DriverID, trip.TotalDue),
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("trip created",
		zap.Int64("trip_id", trip.ID),
		zap.Int64("driver_id", trip.DriverID),
		zap.String("total_due", trip.TotalDue.String()),
	)

	return trip, nil
}

// EditTripRequest contains the parameters for editing a trip's measures.
// Nil fields are left unchanged.
type EditTripRequest struct {
	TripID           int64
	DistanceKm       *decimal.Decimal
	SideLoadingCount *int64
	RoofLoadingCount *int64
	AccountID        int64
}

// EditTrip adjusts a trip's distance or loading counts. The total due moves
// by the per-component delta priced at the driver's current rates; the rest
// of the stored breakdown stays as entered. Settlement state is untouched,
// so an already-paid trip can end up owing again after an upward edit.
func (s *TripService) EditTrip(ctx context.Context, req EditTripRequest) (*domain.Trip, error) {
	if req.TripID == 0 {
		return nil, ErrInvalidTripID
	}

	if req.DistanceKm != nil && !req.DistanceKm.IsPositive() {
		return nil, ErrInvalidDistance
	}
	if req.SideLoadingCount != nil && *req.SideLoadingCount < 0 {
		return nil, ErrInvalidLoadingCount
	}
	if req.RoofLoadingCount != nil && *req.RoofLoadingCount < 0 {
		return nil, ErrInvalidLoadingCount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)
	txAuditRepo := postgres.NewAuditLogRepositoryWithTx(tx)

	var trip *domain.Trip
	trip, err = txTripRepo.GetByIDForUpdate(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	var driver *domain.Driver
	driver, err = txDriverRepo.GetByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}

	delta := decimal.Zero
	if req.DistanceKm != nil {
		d := payroll.DistanceDelta(driver.Rates, trip.DistanceKm, *req.DistanceKm)
		trip.DistanceKm = *req.DistanceKm
		trip.Breakdown.KmPayment = trip.Breakdown.KmPayment.Add(d)
		delta = delta.Add(d)
	}
	if req.SideLoadingCount != nil {
		d := payroll.SideLoadingDelta(driver.Rates, trip.SideLoadingCount, *req.SideLoadingCount)
		trip.SideLoadingCount = *req.SideLoadingCount
		trip.Breakdown.SideLoadingPayment = trip.Breakdown.SideLoadingPayment.Add(d)
		delta = delta.Add(d)
	}
	if req.RoofLoadingCount != nil {
		d := payroll.RoofLoadingDelta(driver.Rates, trip.RoofLoadingCount, *req.RoofLoadingCount)
		trip.RoofLoadingCount = *req.RoofLoadingCount
		trip.Breakdown.RoofLoadingPayment = trip.Breakdown.RoofLoadingPayment.Add(d)
		delta = delta.Add(d)
	}

	trip.Breakdown.Total = trip.Breakdown.Total.Add(delta)
	trip.TotalDue = trip.TotalDue.Add(delta)

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	err = txAuditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: req.AccountID,
		Action:    "trip.edited",
		Details:   fmt.Sprintf("trip=%d delta=%s total=%s", trip.ID, delta, trip.TotalDue),
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("trip edited",
		zap.Int64("trip_id", trip.ID),
		zap.String("delta", delta.String()),
	)

	return trip, nil
}

// AddDowntimeRequest contains the parameters for billing extra idle hours.
type AddDowntimeRequest struct {
	TripID    int64
	Kind      domain.DowntimeKind
	Hours     decimal.Decimal
	AccountID int64
}

// AddDowntime appends a downtime entry to a trip and bumps the trip's total
// due by its payment, in one transaction.
func (s *TripService) AddDowntime(ctx context.Context, req AddDowntimeRequest) (*domain.Downtime, error) {
	if req.TripID == 0 {
		return nil, ErrInvalidTripID
	}

	if req.Kind != domain.DowntimeKindRegular && req.Kind != domain.DowntimeKindForced {
		return nil, ErrInvalidDowntimeKind
	}

	if !req.Hours.IsPositive() {
		return nil, ErrInvalidDowntimeHours
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)
	txDowntimeRepo := postgres.NewDowntimeRepositoryWithTx(tx)
	txAuditRepo := postgres.NewAuditLogRepositoryWithTx(tx)

	var trip *domain.Trip
	trip, err = txTripRepo.GetByIDForUpdate(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	var driver *domain.Driver
	driver, err = txDriverRepo.GetByID(ctx, trip.DriverID)
	if err != nil {
		return nil, err
	}

	downtime := &domain.Downtime{
		TripID:  trip.ID,
		Kind:    req.Kind,
		Hours:   req.Hours,
		Payment: payroll.DowntimePayment(driver.Rates, req.Kind, req.Hours),
	}

	if err = txDowntimeRepo.Create(ctx, downtime); err != nil {
		return nil, err
	}

	if req.Kind == domain.DowntimeKindForced {
		trip.Breakdown.ForcedDowntimePayment = trip.Breakdown.ForcedDowntimePayment.Add(downtime.Payment)
	} else {
		trip.Breakdown.RegularDowntimePayment = trip.Breakdown.RegularDowntimePayment.Add(downtime.Payment)
	}
	trip.Breakdown.Total = trip.Breakdown.Total.Add(downtime.Payment)
	trip.TotalDue = trip.TotalDue.Add(downtime.Payment)

	if err = txTripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	err = txAuditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: req.AccountID,
		Action:    "downtime.added",
		Details: fmt.Sprintf("trip=%d kind=%s hours=%s payment=%s",
			trip.ID, req.Kind, req.Hours, downtime.Payment),
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("downtime added",
		zap.Int64("trip_id", trip.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("payment", downtime.Payment.String()),
	)

	return downtime, nil
}

// GetTrip retrieves a trip by id.
func (s *TripService) GetTrip(ctx context.Context, tripID int64) (*domain.Trip, error) {
	if tripID == 0 {
		return nil, ErrInvalidTripID
	}

	return s.tripRepo.GetByID(ctx, tripID)
}

// GetTripDowntimes retrieves a trip's downtime entries in creation order.
func (s *TripService) GetTripDowntimes(ctx context.Context, tripID int64) ([]*domain.Downtime, error) {
	if tripID == 0 {
		return nil, ErrInvalidTripID
	}

	return s.downtimeRepo.ListByTrip(ctx, tripID)
}

// History retrieves trips from the last days days, newest first. days <= 0
// returns the full history.
func (s *TripService) History(ctx context.Context, days int) ([]*domain.Trip, error) {
	var since time.Time
	if days > 0 {
		since = time.Now().AddDate(0, 0, -days)
	}

	return s.tripRepo.List(ctx, since)
}
