package service

import (
	"context"

	"go.uber.org/zap"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// AuditService exposes the append-only action log.
type AuditService struct {
	auditRepo repository.AuditLogRepository
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo repository.AuditLogRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{auditRepo: auditRepo, logger: logger}
}

// Record appends an entry to the log.
func (s *AuditService) Record(ctx context.Context, accountID int64, action, details string) error {
	err := s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: accountID,
		Action:    action,
		Details:   details,
	})
	if err != nil {
		return err
	}

	s.logger.Info("audit entry",
		zap.Int64("account_id", accountID),
		zap.String("action", action),
	)

	return nil
}

// Recent retrieves the most recent entries, newest first.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]*domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return s.auditRepo.ListRecent(ctx, limit)
}
