package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateCard holds a driver's per-unit pay rates. All rates are non-negative.
// Editing a rate card never retroactively changes already-computed trip totals.
type RateCard struct {
	KmRate              decimal.Decimal
	SideLoadingRate     decimal.Decimal
	RoofLoadingRate     decimal.Decimal
	RegularDowntimeRate decimal.Decimal
	ForcedDowntimeRate  decimal.Decimal
}

// Driver represents a driver in the registry together with their rate card.
type Driver struct {
	ID        int64
	Name      string
	Rates     RateCard
	VehicleID int64 // 0 when the driver has no default vehicle
	Notes     string
	CreatedAt time.Time
}
