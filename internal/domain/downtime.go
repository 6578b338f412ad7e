package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DowntimeKind represents the kind of downtime billed on a trip.
type DowntimeKind string

const (
	DowntimeKindRegular DowntimeKind = "REGULAR"
	DowntimeKindForced  DowntimeKind = "FORCED"
)

// Downtime represents billed idle hours attached to a trip.
// Rows are appended, never mutated; the parent trip's TotalDue grows by
// Payment at the moment the downtime is recorded.
type Downtime struct {
	ID        int64
	TripID    int64
	Kind      DowntimeKind
	Hours     decimal.Decimal
	Payment   decimal.Decimal
	CreatedAt time.Time
}
