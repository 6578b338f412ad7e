package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent records a ledger mutation against a trip. Events are produced
// by the reconciler and consumed as audit-log entries; they are not read back
// to derive balances.
type PaymentEvent struct {
	ID              string // uuid
	TripID          int64
	Amount          decimal.Decimal
	ResultingPaid   decimal.Decimal
	ResultingStatus PaymentStatus
	AccountID       int64
	CreatedAt       time.Time
}
