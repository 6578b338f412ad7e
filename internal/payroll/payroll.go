// Package payroll computes per-trip pay from a driver's rate card.
package payroll

import (
	"github.com/shopspring/decimal"

	"fleetpay/internal/domain"
)

// Measures are the billable quantities of a trip.
type Measures struct {
	DistanceKm       decimal.Decimal
	SideLoadingCount int64
	RoofLoadingCount int64
	RegularHours     decimal.Decimal
	ForcedHours      decimal.Decimal
}

// Compute returns the itemized cost of a trip. It is pure and performs no
// rounding; display-time rounding is a presentation concern.
func Compute(rates domain.RateCard, m Measures) domain.CostBreakdown {
	b := domain.CostBreakdown{
		KmPayment:              m.DistanceKm.Mul(rates.KmRate),
		SideLoadingPayment:     decimal.NewFromInt(m.SideLoadingCount).Mul(rates.SideLoadingRate),
		RoofLoadingPayment:     decimal.NewFromInt(m.RoofLoadingCount).Mul(rates.RoofLoadingRate),
		RegularDowntimePayment: m.RegularHours.Mul(rates.RegularDowntimeRate),
		ForcedDowntimePayment:  m.ForcedHours.Mul(rates.ForcedDowntimeRate),
	}
	b.Total = b.KmPayment.
		Add(b.SideLoadingPayment).
		Add(b.RoofLoadingPayment).
		Add(b.RegularDowntimePayment).
		Add(b.ForcedDowntimePayment)
	return b
}

// DowntimePayment prices a single downtime entry against the rate card.
func DowntimePayment(rates domain.RateCard, kind domain.DowntimeKind, hours decimal.Decimal) decimal.Decimal {
	if kind == domain.DowntimeKindForced {
		return hours.Mul(rates.ForcedDowntimeRate)
	}
	return hours.Mul(rates.RegularDowntimeRate)
}

// DistanceDelta returns the total-due adjustment for a distance edit.
func DistanceDelta(rates domain.RateCard, oldKm, newKm decimal.Decimal) decimal.Decimal {
	return newKm.Sub(oldKm).Mul(rates.KmRate)
}

// SideLoadingDelta returns the total-due adjustment for a side-loading edit.
func SideLoadingDelta(rates domain.RateCard, oldCount, newCount int64) decimal.Decimal {
	return decimal.NewFromInt(newCount - oldCount).Mul(rates.SideLoadingRate)
}

// RoofLoadingDelta returns the total-due adjustment for a roof-loading edit.
func RoofLoadingDelta(rates domain.RateCard, oldCount, newCount int64) decimal.Decimal {
	return decimal.NewFromInt(newCount - oldCount).Mul(rates.RoofLoadingRate)
}
