package postgres

import (
	"context"
	"database/sql"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// AuditLogRepository is a PostgreSQL implementation of repository.AuditLogRepository.
type AuditLogRepository struct {
	q Querier
}

// NewAuditLogRepository creates a new PostgreSQL audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db}
}

// NewAuditLogRepositoryWithTx creates an audit log repository using a transaction.
func NewAuditLogRepositoryWithTx(tx *sql.Tx) *AuditLogRepository {
	return &AuditLogRepository{q: tx}
}

// Append persists a new audit entry.
func (r *AuditLogRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (account_id, action, details)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return r.q.QueryRowContext(ctx, query,
		entry.AccountID,
		entry.Action,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListRecent retrieves the most recent entries, newest first.
func (r *AuditLogRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, account_id, action, details, created_at
		FROM audit_log ORDER BY id DESC LIMIT $1
	`

	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Ensure AuditLogRepository implements repository.AuditLogRepository.
var _ repository.AuditLogRepository = (*AuditLogRepository)(nil)
