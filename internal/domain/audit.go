package domain

import "time"

// AuditEntry is one row of the append-only action log.
type AuditEntry struct {
	ID        int64
	AccountID int64
	Action    string
	Details   string
	CreatedAt time.Time
}
