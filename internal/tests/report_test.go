package tests

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// ──────────────────────────────────────────────
// CSV REPORTS
// ──────────────────────────────────────────────

func TestUnpaidTripsCSV_ListsOutstandingRows(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()

	driverRepo.AddDriver(&domain.Driver{ID: 1, Name: "Alice"})
	tripRepo.AddTrip(&domain.Trip{
		DriverID:      1,
		LoadingCity:   "Minsk",
		UnloadingCity: "Warsaw",
		TotalDue:      decimal.NewFromInt(1000),
		PaidAmount:    decimal.NewFromInt(400),
	})
	tripRepo.AddTrip(&domain.Trip{
		DriverID:   1,
		TotalDue:   decimal.NewFromInt(500),
		PaidAmount: decimal.NewFromInt(500),
		Paid:       true,
	})

	reports := service.NewReportService(tripRepo, driverRepo)

	data, err := reports.UnpaidTripsCSV(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "trip_id,date,driver,route,") {
		t.Errorf("unexpected header: %s", lines[0])
	}

	row := lines[1]
	for _, want := range []string{"Alice", "Minsk - Warsaw", "1000", "400", "600", "PARTIALLY_PAID"} {
		if !strings.Contains(row, want) {
			t.Errorf("expected row to contain %q: %s", want, row)
		}
	}
}

func TestDriverLedgerCSV_OneRowPerDriver(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	tripRepo.SetDriverName(1, "Alice")
	tripRepo.SetDriverName(2, "Bob")

	tripRepo.AddTrip(&domain.Trip{DriverID: 1, TotalDue: decimal.NewFromInt(700), PaidAmount: decimal.Zero})
	tripRepo.AddTrip(&domain.Trip{DriverID: 2, TotalDue: decimal.NewFromInt(300), PaidAmount: decimal.NewFromInt(300), Paid: true})

	reports := service.NewReportService(tripRepo, driverRepo)

	data, err := reports.DriverLedgerCSV(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Alice") || !strings.Contains(lines[1], "700") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "Bob") || !strings.Contains(lines[2], "300") {
		t.Errorf("unexpected second row: %s", lines[2])
	}
}
