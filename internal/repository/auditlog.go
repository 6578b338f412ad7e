package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// AuditLogRepository is the append-only action log sink.
type AuditLogRepository interface {
	// Append persists a new audit entry.
	Append(ctx context.Context, entry *domain.AuditEntry) error

	// ListRecent retrieves the most recent entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error)
}
