package payroll

import (
	"testing"

	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

func rates(km, side, roof, regular, forced int64) domain.RateCard {
	return domain.RateCard{
		KmRate:              decimal.NewFromInt(km),
		SideLoadingRate:     decimal.NewFromInt(side),
		RoofLoadingRate:     decimal.NewFromInt(roof),
		RegularDowntimeRate: decimal.NewFromInt(regular),
		ForcedDowntimeRate:  decimal.NewFromInt(forced),
	}
}

func TestCompute_ItemizedTotal(t *testing.T) {
	t.Parallel()

	rc := rates(10, 50, 80, 100, 150)
	b := Compute(rc, Measures{
		DistanceKm:       decimal.NewFromInt(200),
		SideLoadingCount: 2,
		RoofLoadingCount: 1,
	})

	if !b.KmPayment.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("km payment: got %s, want 2000", b.KmPayment)
	}
	if !b.SideLoadingPayment.Equal(decimal.NewFromInt(100)) {
		t.Errorf("side payment: got %s, want 100", b.SideLoadingPayment)
	}
	if !b.RoofLoadingPayment.Equal(decimal.NewFromInt(80)) {
		t.Errorf("roof payment: got %s, want 80", b.RoofLoadingPayment)
	}
	if !b.Total.Equal(decimal.NewFromInt(2180)) {
		t.Errorf("total: got %s, want 2180", b.Total)
	}
}

func TestCompute_DowntimeComponents(t *testing.T) {
	t.Parallel()

	rc := rates(10, 0, 0, 100, 150)
	b := Compute(rc, Measures{
		DistanceKm:   decimal.NewFromInt(100),
		RegularHours: decimal.RequireFromString("2.5"),
		ForcedHours:  decimal.NewFromInt(4),
	})

	if !b.RegularDowntimePayment.Equal(decimal.NewFromInt(250)) {
		t.Errorf("regular downtime: got %s, want 250", b.RegularDowntimePayment)
	}
	if !b.ForcedDowntimePayment.Equal(decimal.NewFromInt(600)) {
		t.Errorf("forced downtime: got %s, want 600", b.ForcedDowntimePayment)
	}
	if !b.Total.Equal(decimal.NewFromInt(1850)) {
		t.Errorf("total: got %s, want 1850", b.Total)
	}
}

func TestCompute_FractionalRatesNoRounding(t *testing.T) {
	t.Parallel()

	rc := domain.RateCard{KmRate: decimal.RequireFromString("25.5")}
	b := Compute(rc, Measures{DistanceKm: decimal.RequireFromString("33.3")})

	want := decimal.RequireFromString("849.15")
	if !b.Total.Equal(want) {
		t.Errorf("total: got %s, want %s", b.Total, want)
	}
}

func TestDowntimePayment_PicksRateByKind(t *testing.T) {
	t.Parallel()

	rc := rates(0, 0, 0, 100, 150)
	hours := decimal.NewFromInt(3)

	if got := DowntimePayment(rc, domain.DowntimeKindRegular, hours); !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("regular: got %s, want 300", got)
	}
	if got := DowntimePayment(rc, domain.DowntimeKindForced, hours); !got.Equal(decimal.NewFromInt(450)) {
		t.Errorf("forced: got %s, want 450", got)
	}
}

func TestDeltas_Additive(t *testing.T) {
	t.Parallel()

	rc := rates(10, 50, 80, 0, 0)

	if got := DistanceDelta(rc, decimal.NewFromInt(200), decimal.NewFromInt(250)); !got.Equal(decimal.NewFromInt(500)) {
		t.Errorf("distance delta: got %s, want 500", got)
	}
	if got := SideLoadingDelta(rc, 2, 1); !got.Equal(decimal.NewFromInt(-50)) {
		t.Errorf("side delta: got %s, want -50", got)
	}
	if got := RoofLoadingDelta(rc, 0, 2); !got.Equal(decimal.NewFromInt(160)) {
		t.Errorf("roof delta: got %s, want 160", got)
	}
}
