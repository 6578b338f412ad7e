package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// ──────────────────────────────────────────────
// TRIP ENTRY VALIDATION AND HISTORY
// ──────────────────────────────────────────────

func newTripService(tripRepo *MockTripRepository) *service.TripService {
	// The transactional paths need a live database; validation and the
	// read-only queries are covered here.
	return service.NewTripService(
		nil,
		tripRepo,
		NewMockDriverRepository(),
		NewMockVehicleRepository(),
		NewMockDowntimeRepository(),
		NewMockAuditLogRepository(),
		nil,
	)
}

func TestCreateTrip_RejectsInvalidMeasures(t *testing.T) {
	t.Parallel()

	trips := newTripService(NewMockTripRepository())
	ctx := context.Background()

	base := service.CreateTripRequest{
		DriverID:      1,
		VehicleID:     1,
		LoadingCity:   "Minsk",
		UnloadingCity: "Warsaw",
		DistanceKm:    decimal.NewFromInt(500),
	}

	cases := []struct {
		name    string
		mutate  func(*service.CreateTripRequest)
		wantErr error
	}{
		{"missing driver", func(r *service.CreateTripRequest) { r.DriverID = 0 }, service.ErrInvalidDriverID},
		{"missing vehicle", func(r *service.CreateTripRequest) { r.VehicleID = 0 }, service.ErrInvalidVehicleID},
		{"empty city", func(r *service.CreateTripRequest) { r.LoadingCity = "" }, service.ErrInvalidCity},
		{"zero distance", func(r *service.CreateTripRequest) { r.DistanceKm = decimal.Zero }, service.ErrInvalidDistance},
		{"negative distance", func(r *service.CreateTripRequest) { r.DistanceKm = decimal.NewFromInt(-10) }, service.ErrInvalidDistance},
		{"negative side loadings", func(r *service.CreateTripRequest) { r.SideLoadingCount = -1 }, service.ErrInvalidLoadingCount},
		{"negative downtime", func(r *service.CreateTripRequest) { r.RegularHours = decimal.NewFromInt(-2) }, service.ErrInvalidDowntimeHours},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := base
			tc.mutate(&req)
			_, err := trips.CreateTrip(ctx, req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAddDowntime_RejectsUnknownKindAndHours(t *testing.T) {
	t.Parallel()

	trips := newTripService(NewMockTripRepository())
	ctx := context.Background()

	_, err := trips.AddDowntime(ctx, service.AddDowntimeRequest{
		TripID: 1,
		Kind:   domain.DowntimeKind("LUNCH"),
		Hours:  decimal.NewFromInt(2),
	})
	if !errors.Is(err, service.ErrInvalidDowntimeKind) {
		t.Errorf("expected ErrInvalidDowntimeKind, got %v", err)
	}

	_, err = trips.AddDowntime(ctx, service.AddDowntimeRequest{
		TripID: 1,
		Kind:   domain.DowntimeKindRegular,
		Hours:  decimal.Zero,
	})
	if !errors.Is(err, service.ErrInvalidDowntimeHours) {
		t.Errorf("expected ErrInvalidDowntimeHours, got %v", err)
	}
}

func TestHistory_FiltersByWindow(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	trips := newTripService(tripRepo)
	ctx := context.Background()

	old := &domain.Trip{DriverID: 1, TotalDue: decimal.NewFromInt(100)}
	tripRepo.AddTrip(old)
	old.CreatedAt = time.Now().AddDate(0, 0, -40)

	recent := &domain.Trip{DriverID: 1, TotalDue: decimal.NewFromInt(200)}
	tripRepo.AddTrip(recent)
	recent.CreatedAt = time.Now().AddDate(0, 0, -3)

	week, err := trips.History(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(week) != 1 || week[0].ID != recent.ID {
		t.Errorf("expected only the recent trip in 7-day window, got %d trips", len(week))
	}

	month, err := trips.History(ctx, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(month) != 1 {
		t.Errorf("expected 1 trip in 30-day window, got %d", len(month))
	}

	all, err := trips.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected full history of 2 trips, got %d", len(all))
	}

	// Newest first.
	if len(all) == 2 && !all[0].CreatedAt.After(all[1].CreatedAt) {
		t.Error("expected newest trip first")
	}
}

func TestBuildTrip_ZeroRatesBornSettled(t *testing.T) {
	t.Parallel()

	req := service.CreateTripRequest{
		DriverID:      1,
		VehicleID:     1,
		LoadingCity:   "Minsk",
		UnloadingCity: "Warsaw",
		DistanceKm:    decimal.NewFromInt(500),
	}

	trip := service.BuildTrip(req, domain.RateCard{})
	if !trip.TotalDue.IsZero() {
		t.Fatalf("expected zero total, got %s", trip.TotalDue)
	}
	if !trip.Paid {
		t.Error("expected zero-priced trip to be born settled")
	}
	if trip.Status() != domain.PaymentStatusFullyPaid {
		t.Errorf("expected FULLY_PAID status, got %s", trip.Status())
	}
	if !trip.Outstanding().IsZero() {
		t.Errorf("expected no outstanding balance, got %s", trip.Outstanding())
	}

	// A normally priced trip starts unpaid.
	trip = service.BuildTrip(req, domain.RateCard{KmRate: decimal.NewFromInt(2)})
	if trip.Paid || trip.Status() != domain.PaymentStatusUnpaid {
		t.Errorf("expected unpaid trip, got paid=%v status=%s", trip.Paid, trip.Status())
	}
	if want := decimal.NewFromInt(1000); !trip.TotalDue.Equal(want) {
		t.Errorf("expected total %s, got %s", want, trip.TotalDue)
	}
}
