package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// ──────────────────────────────────────────────
// LEDGER TRANSITION INVARIANTS
// ──────────────────────────────────────────────

func unpaidTrip(totalDue int64) *domain.Trip {
	return &domain.Trip{
		ID:         1,
		DriverID:   1,
		TotalDue:   decimal.NewFromInt(totalDue),
		PaidAmount: decimal.Zero,
	}
}

func TestApplyPayment_SequenceReachesFullyPaid(t *testing.T) {
	t.Parallel()

	trip := unpaidTrip(1000)

	for _, amount := range []int64{300, 200, 500} {
		if err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(amount)); err != nil {
			t.Fatalf("payment of %d: unexpected error %v", amount, err)
		}
	}

	if !trip.Paid {
		t.Error("expected trip to be fully paid after payments sum to total")
	}
	if trip.Status() != domain.PaymentStatusFullyPaid {
		t.Errorf("expected FULLY_PAID, got %s", trip.Status())
	}
	if !trip.Outstanding().IsZero() {
		t.Errorf("expected zero outstanding, got %s", trip.Outstanding())
	}
}

func TestApplyPayment_OrderDoesNotMatter(t *testing.T) {
	t.Parallel()

	a := unpaidTrip(1000)
	b := unpaidTrip(1000)

	for _, amount := range []int64{300, 200, 500} {
		if err := service.ApplyPaymentToTrip(a, decimal.NewFromInt(amount)); err != nil {
			t.Fatal(err)
		}
	}
	for _, amount := range []int64{500, 300, 200} {
		if err := service.ApplyPaymentToTrip(b, decimal.NewFromInt(amount)); err != nil {
			t.Fatal(err)
		}
	}

	if !a.PaidAmount.Equal(b.PaidAmount) {
		t.Errorf("paid amounts differ: %s vs %s", a.PaidAmount, b.PaidAmount)
	}
	if a.Paid != b.Paid {
		t.Error("paid flags differ")
	}
}

func TestApplyPayment_PartialLeavesPartiallyPaid(t *testing.T) {
	t.Parallel()

	trip := unpaidTrip(1000)

	if err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(400)); err != nil {
		t.Fatal(err)
	}

	if trip.Paid {
		t.Error("expected trip not fully paid")
	}
	if trip.Status() != domain.PaymentStatusPartiallyPaid {
		t.Errorf("expected PARTIALLY_PAID, got %s", trip.Status())
	}
	if want := decimal.NewFromInt(600); !trip.Outstanding().Equal(want) {
		t.Errorf("expected outstanding %s, got %s", want, trip.Outstanding())
	}
}

func TestApplyPayment_OverpayRejectedWhole(t *testing.T) {
	t.Parallel()

	trip := unpaidTrip(1000)
	if err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(600)); err != nil {
		t.Fatal(err)
	}

	err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(500))
	if !errors.Is(err, service.ErrAmountExceedsBalance) {
		t.Fatalf("expected ErrAmountExceedsBalance, got %v", err)
	}

	// The rejected payment must not move the balance at all.
	if want := decimal.NewFromInt(600); !trip.PaidAmount.Equal(want) {
		t.Errorf("expected paid amount %s, got %s", want, trip.PaidAmount)
	}
	if trip.Paid {
		t.Error("expected trip not fully paid")
	}
}

func TestApplyPayment_NonPositiveAmountRejected(t *testing.T) {
	t.Parallel()

	trip := unpaidTrip(1000)

	if err := service.ApplyPaymentToTrip(trip, decimal.Zero); !errors.Is(err, service.ErrInvalidPaymentAmount) {
		t.Errorf("zero amount: expected ErrInvalidPaymentAmount, got %v", err)
	}
	if err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(-5)); !errors.Is(err, service.ErrInvalidPaymentAmount) {
		t.Errorf("negative amount: expected ErrInvalidPaymentAmount, got %v", err)
	}
}

func TestApplyPayment_FullyPaidTripExceedsBalance(t *testing.T) {
	t.Parallel()

	trip := unpaidTrip(500)
	if err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(500)); err != nil {
		t.Fatal(err)
	}
	if !trip.Paid {
		t.Fatal("expected trip fully paid")
	}

	// Nothing is outstanding, so even the smallest payment exceeds the
	// balance. No separate already-paid error exists.
	err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(1))
	if !errors.Is(err, service.ErrAmountExceedsBalance) {
		t.Errorf("expected ErrAmountExceedsBalance, got %v", err)
	}
	if !trip.PaidAmount.Equal(trip.TotalDue) {
		t.Errorf("expected paid amount %s, got %s", trip.TotalDue, trip.PaidAmount)
	}
}

func TestMarkFullyPaid_SettlesRemainder(t *testing.T) {
	t.Parallel()

	trip := unpaidTrip(1000)
	if err := service.ApplyPaymentToTrip(trip, decimal.NewFromInt(750)); err != nil {
		t.Fatal(err)
	}

	service.MarkTripFullyPaid(trip)

	if !trip.Paid {
		t.Error("expected trip fully paid")
	}
	if !trip.PaidAmount.Equal(trip.TotalDue) {
		t.Errorf("expected paid amount %s, got %s", trip.TotalDue, trip.PaidAmount)
	}

	// Settling again is a no-op, not a conflict.
	service.MarkTripFullyPaid(trip)
	if !trip.Paid || !trip.PaidAmount.Equal(trip.TotalDue) {
		t.Errorf("second settle changed state: paid=%v amount=%s", trip.Paid, trip.PaidAmount)
	}
}

// ──────────────────────────────────────────────
// OUTSTANDING AGGREGATES
// ──────────────────────────────────────────────

func TestOutstanding_AggregatesAcrossDrivers(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	auditRepo := NewMockAuditLogRepository()
	tripRepo.SetDriverName(1, "Alice")
	tripRepo.SetDriverName(2, "Bob")

	tripRepo.AddTrip(&domain.Trip{
		DriverID:   1,
		TotalDue:   decimal.NewFromInt(1000),
		PaidAmount: decimal.NewFromInt(400),
	})
	tripRepo.AddTrip(&domain.Trip{
		DriverID:   1,
		TotalDue:   decimal.NewFromInt(500),
		PaidAmount: decimal.Zero,
	})
	tripRepo.AddTrip(&domain.Trip{
		DriverID:   2,
		TotalDue:   decimal.NewFromInt(300),
		PaidAmount: decimal.NewFromInt(300),
		Paid:       true,
	})
	tripRepo.AddTrip(&domain.Trip{
		DriverID:   2,
		TotalDue:   decimal.NewFromInt(200),
		PaidAmount: decimal.NewFromInt(50),
	})

	ledger := service.NewLedgerService(nil, tripRepo, auditRepo, nil)

	total, err := ledger.OutstandingTotal(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// 600 + 500 + 150; the fully paid trip contributes nothing.
	if want := decimal.NewFromInt(1250); !total.Equal(want) {
		t.Errorf("expected total %s, got %s", want, total)
	}

	debts, err := ledger.OutstandingByDriver(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(debts) != 2 {
		t.Fatalf("expected 2 drivers with debt, got %d", len(debts))
	}

	if debts[0].DriverName != "Alice" || debts[0].UnpaidTrips != 2 {
		t.Errorf("unexpected first row: %+v", debts[0])
	}
	if want := decimal.NewFromInt(1100); !debts[0].Outstanding.Equal(want) {
		t.Errorf("expected Alice outstanding %s, got %s", want, debts[0].Outstanding)
	}
	if want := decimal.NewFromInt(150); !debts[1].Outstanding.Equal(want) {
		t.Errorf("expected Bob outstanding %s, got %s", want, debts[1].Outstanding)
	}
}

func TestLedgerStats_SplitsPaidAndUnpaid(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	auditRepo := NewMockAuditLogRepository()
	tripRepo.SetDriverName(1, "Alice")

	tripRepo.AddTrip(&domain.Trip{
		DriverID:   1,
		TotalDue:   decimal.NewFromInt(1000),
		PaidAmount: decimal.NewFromInt(1000),
		Paid:       true,
	})
	tripRepo.AddTrip(&domain.Trip{
		DriverID:   1,
		TotalDue:   decimal.NewFromInt(800),
		PaidAmount: decimal.NewFromInt(300),
	})

	ledger := service.NewLedgerService(nil, tripRepo, auditRepo, nil)

	stats, err := ledger.LedgerStatsByDriver(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 row, got %d", len(stats))
	}

	row := stats[0]
	if row.PaidTrips != 1 || row.UnpaidTrips != 1 || row.TotalTrips != 2 {
		t.Errorf("unexpected trip counts: %+v", row)
	}
	if want := decimal.NewFromInt(1000); !row.PaidAmount.Equal(want) {
		t.Errorf("expected paid amount %s, got %s", want, row.PaidAmount)
	}
	if want := decimal.NewFromInt(500); !row.UnpaidAmount.Equal(want) {
		t.Errorf("expected unpaid amount %s, got %s", want, row.UnpaidAmount)
	}
	if want := decimal.NewFromInt(300); !row.PartiallyPaid.Equal(want) {
		t.Errorf("expected partially paid %s, got %s", want, row.PartiallyPaid)
	}
	if want := decimal.NewFromInt(1800); !row.TotalAmount.Equal(want) {
		t.Errorf("expected total amount %s, got %s", want, row.TotalAmount)
	}
}
