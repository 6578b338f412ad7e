package domain

import "time"

// Vehicle represents a truck/trailer pair.
type Vehicle struct {
	ID            int64
	TruckNumber   string
	TrailerNumber string
	Notes         string
	CreatedAt     time.Time
}
