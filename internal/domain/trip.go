package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a trip.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusFullyPaid     PaymentStatus = "FULLY_PAID"
)

// CostBreakdown itemizes the components of a trip's pay.
type CostBreakdown struct {
	KmPayment              decimal.Decimal
	SideLoadingPayment     decimal.Decimal
	RoofLoadingPayment     decimal.Decimal
	RegularDowntimePayment decimal.Decimal
	ForcedDowntimePayment  decimal.Decimal
	Total                  decimal.Decimal
}

// Trip represents a completed haul entered by an operator.
//
// TotalDue is fixed at creation and only ever adjusted additively (edit
// deltas, appended downtime). PaidAmount and the Paid flag are mutated only
// by the ledger; the invariant 0 <= PaidAmount <= TotalDue holds at all
// times, and Paid is true iff PaidAmount == TotalDue.
type Trip struct {
	ID               int64
	DriverID         int64
	VehicleID        int64
	LoadingCity      string
	UnloadingCity    string
	DistanceKm       decimal.Decimal
	SideLoadingCount int64
	RoofLoadingCount int64
	Breakdown        CostBreakdown
	TotalDue         decimal.Decimal
	PaidAmount       decimal.Decimal
	Paid             bool
	CreatedAt        time.Time
}

// Status derives the settlement state from the paid amount.
func (t *Trip) Status() PaymentStatus {
	switch {
	case t.Paid || t.PaidAmount.Equal(t.TotalDue):
		return PaymentStatusFullyPaid
	case t.PaidAmount.IsPositive():
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusUnpaid
	}
}

// Outstanding returns the unpaid remainder of the trip.
func (t *Trip) Outstanding() decimal.Decimal {
	if t.Paid {
		return decimal.Zero
	}
	return t.TotalDue.Sub(t.PaidAmount)
}
