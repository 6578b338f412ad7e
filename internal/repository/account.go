package repository

import (
	"context"

	"fleetpay/internal/domain"
)

// AccountRepository defines the persistence operations for operator accounts
// and their roles.
type AccountRepository interface {
	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id int64) (*domain.Account, error)

	// GetAll retrieves all accounts.
	GetAll(ctx context.Context) ([]*domain.Account, error)

	// Upsert creates the account or updates its username and role.
	Upsert(ctx context.Context, account *domain.Account) error

	// Delete removes an account.
	Delete(ctx context.Context, id int64) error

	// CountByRole returns the number of accounts holding the given role.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
