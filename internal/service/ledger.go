package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
	"fleetpay/internal/repository/postgres"
)

// ApplyPaymentToTrip applies a partial payment to a trip in memory. The
// amount must be positive and must not exceed the outstanding balance; when
// the payment settles the balance exactly, the trip flips to fully paid. A
// fully paid trip has no outstanding balance, so any further payment falls
// out as ErrAmountExceedsBalance.
func ApplyPaymentToTrip(trip *domain.Trip, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidPaymentAmount
	}

	if amount.GreaterThan(trip.Outstanding()) {
		return ErrAmountExceedsBalance
	}

	trip.PaidAmount = trip.PaidAmount.Add(amount)
	if trip.PaidAmount.Equal(trip.TotalDue) {
		trip.Paid = true
	}

	return nil
}

// MarkTripFullyPaid settles a trip's remaining balance in memory. It is
// idempotent: settling an already settled trip is a no-op.
func MarkTripFullyPaid(trip *domain.Trip) {
	trip.PaidAmount = trip.TotalDue
	trip.Paid = true
}

// LedgerService reconciles trip balances. Every mutation runs in a single
// transaction over a locked trip row, and every mutation leaves an audit
// entry in the same transaction.
type LedgerService struct {
	db        *sql.DB
	tripRepo  repository.TripRepository
	auditRepo repository.AuditLogRepository
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	db *sql.DB,
	tripRepo repository.TripRepository,
	auditRepo repository.AuditLogRepository,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		db:        db,
		tripRepo:  tripRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ApplyPaymentRequest contains the parameters for recording a payment.
type ApplyPaymentRequest struct {
	TripID    int64
	Amount    decimal.Decimal
	AccountID int64
}

// ApplyPayment records a partial payment against a trip. A payment larger
// than the outstanding balance is rejected whole; the caller may follow up
// with MarkFullyPaid instead.
func (s *LedgerService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*domain.PaymentEvent, error) {
	if req.TripID == 0 {
		return nil, ErrInvalidTripID
	}

	if !req.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	var event *domain.PaymentEvent
	err := s.inTx(ctx, func(tripRepo repository.TripRepository, auditRepo repository.AuditLogRepository) error {
		trip, err := tripRepo.GetByIDForUpdate(ctx, req.TripID)
		if err != nil {
			return err
		}

		if err := ApplyPaymentToTrip(trip, req.Amount); err != nil {
			return err
		}

		if err := tripRepo.Update(ctx, trip); err != nil {
			return err
		}

		event = s.newEvent(trip, req.Amount, req.AccountID)
		return auditRepo.Append(ctx, &domain.AuditEntry{
			AccountID: req.AccountID,
			Action:    "payment.applied",
			Details: fmt.Sprintf("trip=%d amount=%s paid=%s status=%s event=%s",
				trip.ID, req.Amount, trip.PaidAmount, trip.Status(), event.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment applied",
		zap.Int64("trip_id", req.TripID),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(event.ResultingStatus)),
	)

	return event, nil
}

// MarkFullyPaidRequest contains the parameters for settling a trip.
type MarkFullyPaidRequest struct {
	TripID    int64
	AccountID int64
}

// MarkFullyPaid settles a trip's remaining balance regardless of the amount
// outstanding.
func (s *LedgerService) MarkFullyPaid(ctx context.Context, req MarkFullyPaidRequest) (*domain.PaymentEvent, error) {
	if req.TripID == 0 {
		return nil, ErrInvalidTripID
	}

	var event *domain.PaymentEvent
	err := s.inTx(ctx, func(tripRepo repository.TripRepository, auditRepo repository.AuditLogRepository) error {
		trip, err := tripRepo.GetByIDForUpdate(ctx, req.TripID)
		if err != nil {
			return err
		}

		remainder := trip.Outstanding()
		MarkTripFullyPaid(trip)

		if err := tripRepo.Update(ctx, trip); err != nil {
			return err
		}

		event = s.newEvent(trip, remainder, req.AccountID)
		return auditRepo.Append(ctx, &domain.AuditEntry{
			AccountID: req.AccountID,
			Action:    "payment.settled",
			Details: fmt.Sprintf("trip=%d amount=%s event=%s",
				trip.ID, remainder, event.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip settled",
		zap.Int64("trip_id", req.TripID),
		zap.String("amount", event.Amount.String()),
	)

	return event, nil
}

// MarkAllForDriverFullyPaid settles every outstanding trip of a driver in a
// single transaction. Either all of the driver's trips settle or none do.
func (s *LedgerService) MarkAllForDriverFullyPaid(ctx context.Context, driverID, accountID int64) ([]*domain.PaymentEvent, error) {
	if driverID == 0 {
		return nil, ErrInvalidDriverID
	}

	var events []*domain.PaymentEvent
	err := s.inTx(ctx, func(tripRepo repository.TripRepository, auditRepo repository.AuditLogRepository) error {
		trips, err := tripRepo.ListUnpaidByDriver(ctx, driverID)
		if err != nil {
			return err
		}

		for _, trip := range trips {
			remainder := trip.Outstanding()
			MarkTripFullyPaid(trip)

			if err := tripRepo.Update(ctx, trip); err != nil {
				return err
			}

			events = append(events, s.newEvent(trip, remainder, accountID))
		}

		return auditRepo.Append(ctx, &domain.AuditEntry{
			AccountID: accountID,
			Action:    "payment.driver_settled",
			Details:   fmt.Sprintf("driver=%d trips=%d", driverID, len(events)),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("driver settled",
		zap.Int64("driver_id", driverID),
		zap.Int("trips", len(events)),
	)

	return events, nil
}

// OutstandingTotal returns the summed outstanding balance across all trips.
func (s *LedgerService) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.tripRepo.OutstandingTotal(ctx)
}

// OutstandingByDriver returns the outstanding balance per driver.
func (s *LedgerService) OutstandingByDriver(ctx context.Context) ([]repository.DriverDebt, error) {
	return s.tripRepo.OutstandingByDriver(ctx)
}

// LedgerStatsByDriver returns the detailed paid/unpaid breakdown per driver.
func (s *LedgerService) LedgerStatsByDriver(ctx context.Context) ([]repository.DriverLedgerStats, error) {
	return s.tripRepo.LedgerStatsByDriver(ctx)
}

// ListUnpaid retrieves all trips that still carry a balance.
func (s *LedgerService) ListUnpaid(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.ListUnpaid(ctx)
}

// ListUnpaidByDriver retrieves a driver's trips that still carry a balance.
func (s *LedgerService) ListUnpaidByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error) {
	if driverID == 0 {
		return nil, ErrInvalidDriverID
	}
	return s.tripRepo.ListUnpaidByDriver(ctx, driverID)
}

func (s *LedgerService) newEvent(trip *domain.Trip, amount decimal.Decimal, accountID int64) *domain.PaymentEvent {
	return &domain.PaymentEvent{
		ID:              uuid.New().String(),
		TripID:          trip.ID,
		Amount:          amount,
		ResultingPaid:   trip.PaidAmount,
		ResultingStatus: trip.Status(),
		AccountID:       accountID,
		CreatedAt:       time.Now(),
	}
}

func (s *LedgerService) inTx(ctx context.Context, fn func(repository.TripRepository, repository.AuditLogRepository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txAuditRepo := postgres.NewAuditLogRepositoryWithTx(tx)

	if err = fn(txTripRepo, txAuditRepo); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}
