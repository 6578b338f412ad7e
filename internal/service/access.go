package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fleetpay/internal/domain"
	"fleetpay/internal/repository"
)

// AccessService resolves account roles. Roles are ordered: a lower value is
// more privileged, so an account passes a check when its role is less than
// or equal to the required one.
type AccessService struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	logger      *zap.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	logger *zap.Logger,
) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// RequireRole checks that the account exists and holds at least the required
// role. An unknown account is denied, not errored.
func (s *AccessService) RequireRole(ctx context.Context, accountID int64, required domain.Role) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccessDenied
		}
		return err
	}

	if account.Role > required {
		return ErrAccessDenied
	}

	return nil
}

// GetAccount retrieves an account by id.
func (s *AccessService) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// ListAccounts retrieves all accounts.
func (s *AccessService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.accountRepo.GetAll(ctx)
}

// GrantRequest contains the parameters for granting or changing a role.
type GrantRequest struct {
	AccountID int64
	Username  string
	Role      domain.Role
	GrantedBy int64
}

// Grant creates the account with the given role, or changes an existing
// account's role. Demoting the only admin is refused.
func (s *AccessService) Grant(ctx context.Context, req GrantRequest) (*domain.Account, error) {
	if req.Role > domain.RoleAdmin {
		existing, err := s.accountRepo.GetByID(ctx, req.AccountID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		if existing != nil && existing.Role == domain.RoleAdmin {
			admins, err := s.accountRepo.CountByRole(ctx, domain.RoleAdmin)
			if err != nil {
				return nil, err
			}
			if admins <= 1 {
				return nil, ErrLastAdmin
			}
		}
	}

	account := &domain.Account{
		ID:       req.AccountID,
		Username: req.Username,
		Role:     req.Role,
	}

	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: req.GrantedBy,
		Action:    "access.granted",
		Details:   fmt.Sprintf("account=%d role=%d", req.AccountID, req.Role),
	})

	s.logger.Info("access granted",
		zap.Int64("account_id", req.AccountID),
		zap.Int("role", int(req.Role)),
	)

	return account, nil
}

// EnsureAdmin seeds the configured admin account on startup so a fresh
// deployment has someone who can grant access. An account that already
// exists is left alone, whatever its current role.
func (s *AccessService) EnsureAdmin(ctx context.Context, accountID int64, username string) error {
	if accountID == 0 {
		return nil
	}

	_, err := s.accountRepo.GetByID(ctx, accountID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	account := &domain.Account{
		ID:       accountID,
		Username: username,
		Role:     domain.RoleAdmin,
	}
	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		return err
	}

	s.logger.Info("seeded admin account", zap.Int64("account_id", accountID))

	return nil
}

// Revoke removes an account entirely. Removing the only admin is refused.
func (s *AccessService) Revoke(ctx context.Context, accountID, revokedBy int64) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.Role == domain.RoleAdmin {
		admins, err := s.accountRepo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return err
	}

	_ = s.auditRepo.Append(ctx, &domain.AuditEntry{
		AccountID: revokedBy,
		Action:    "access.revoked",
		Details:   fmt.Sprintf("account=%d", accountID),
	})

	s.logger.Info("access revoked", zap.Int64("account_id", accountID))

	return nil
}
