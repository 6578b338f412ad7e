package tests

import (
	"context"
	"errors"
	"testing"

	"fleetpay/internal/domain"
	"fleetpay/internal/service"
)

// ──────────────────────────────────────────────
// ROLE CHECKS
// ──────────────────────────────────────────────

func newAccessService(accounts ...*domain.Account) (*service.AccessService, *MockAccountRepository) {
	accountRepo := NewMockAccountRepository()
	for _, a := range accounts {
		accountRepo.AddAccount(a)
	}
	return service.NewAccessService(accountRepo, NewMockAuditLogRepository(), nil), accountRepo
}

func TestRequireRole_LowerRoleIsMorePrivileged(t *testing.T) {
	t.Parallel()

	access, _ := newAccessService(
		&domain.Account{ID: 1, Role: domain.RoleAdmin},
		&domain.Account{ID: 2, Role: domain.RoleEditor},
		&domain.Account{ID: 3, Role: domain.RoleViewer},
	)

	ctx := context.Background()

	// Admin passes every check.
	for _, required := range []domain.Role{domain.RoleAdmin, domain.RoleEditor, domain.RoleViewer} {
		if err := access.RequireRole(ctx, 1, required); err != nil {
			t.Errorf("admin vs role %d: unexpected error %v", required, err)
		}
	}

	// Editor passes editor and viewer checks, not admin.
	if err := access.RequireRole(ctx, 2, domain.RoleViewer); err != nil {
		t.Errorf("editor vs viewer: unexpected error %v", err)
	}
	if err := access.RequireRole(ctx, 2, domain.RoleAdmin); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("editor vs admin: expected ErrAccessDenied, got %v", err)
	}

	// Viewer only passes viewer checks.
	if err := access.RequireRole(ctx, 3, domain.RoleEditor); !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("viewer vs editor: expected ErrAccessDenied, got %v", err)
	}
}

func TestRequireRole_UnknownAccountDenied(t *testing.T) {
	t.Parallel()

	access, _ := newAccessService()

	err := access.RequireRole(context.Background(), 99, domain.RoleViewer)
	if !errors.Is(err, service.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}
}

func TestGrant_CreatesAndUpdatesAccounts(t *testing.T) {
	t.Parallel()

	access, accountRepo := newAccessService(
		&domain.Account{ID: 1, Role: domain.RoleAdmin},
	)

	ctx := context.Background()

	account, err := access.Grant(ctx, service.GrantRequest{
		AccountID: 5,
		Username:  "dispatcher",
		Role:      domain.RoleEditor,
		GrantedBy: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if account.Role != domain.RoleEditor {
		t.Errorf("expected editor role, got %d", account.Role)
	}

	stored, err := accountRepo.GetByID(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Username != "dispatcher" {
		t.Errorf("expected username persisted, got %q", stored.Username)
	}

	// Demote to viewer.
	if _, err := access.Grant(ctx, service.GrantRequest{AccountID: 5, Role: domain.RoleViewer, GrantedBy: 1}); err != nil {
		t.Fatal(err)
	}
	stored, _ = accountRepo.GetByID(ctx, 5)
	if stored.Role != domain.RoleViewer {
		t.Errorf("expected viewer role after demotion, got %d", stored.Role)
	}
}

func TestGrant_RefusesDemotingLastAdmin(t *testing.T) {
	t.Parallel()

	access, _ := newAccessService(
		&domain.Account{ID: 1, Role: domain.RoleAdmin},
	)

	_, err := access.Grant(context.Background(), service.GrantRequest{
		AccountID: 1,
		Role:      domain.RoleViewer,
		GrantedBy: 1,
	})
	if !errors.Is(err, service.ErrLastAdmin) {
		t.Errorf("expected ErrLastAdmin, got %v", err)
	}
}

func TestRevoke_RefusesRemovingLastAdmin(t *testing.T) {
	t.Parallel()

	access, accountRepo := newAccessService(
		&domain.Account{ID: 1, Role: domain.RoleAdmin},
		&domain.Account{ID: 2, Role: domain.RoleAdmin},
		&domain.Account{ID: 3, Role: domain.RoleViewer},
	)

	ctx := context.Background()

	// Two admins: removing one is fine.
	if err := access.Revoke(ctx, 2, 1); err != nil {
		t.Fatal(err)
	}

	// Now account 1 is the only admin left.
	if err := access.Revoke(ctx, 1, 1); !errors.Is(err, service.ErrLastAdmin) {
		t.Errorf("expected ErrLastAdmin, got %v", err)
	}

	// Non-admin accounts can always be removed.
	if err := access.Revoke(ctx, 3, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := accountRepo.GetByID(ctx, 3); err == nil {
		t.Error("expected account 3 to be gone")
	}
}

func TestEnsureAdmin_SeedsOnceAndLeavesExistingAlone(t *testing.T) {
	t.Parallel()

	access, accountRepo := newAccessService()

	ctx := context.Background()

	if err := access.EnsureAdmin(ctx, 7, "boss"); err != nil {
		t.Fatal(err)
	}
	stored, err := accountRepo.GetByID(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Role != domain.RoleAdmin || stored.Username != "boss" {
		t.Errorf("unexpected seeded account: %+v", stored)
	}

	// A later demotion survives restarts.
	if _, err := access.Grant(ctx, service.GrantRequest{AccountID: 8, Role: domain.RoleAdmin, GrantedBy: 7}); err != nil {
		t.Fatal(err)
	}
	if _, err := access.Grant(ctx, service.GrantRequest{AccountID: 7, Role: domain.RoleViewer, GrantedBy: 8}); err != nil {
		t.Fatal(err)
	}
	if err := access.EnsureAdmin(ctx, 7, "boss"); err != nil {
		t.Fatal(err)
	}
	stored, _ = accountRepo.GetByID(ctx, 7)
	if stored.Role != domain.RoleViewer {
		t.Errorf("expected seeding to leave existing account alone, got role %d", stored.Role)
	}

	// An unset id disables seeding.
	if err := access.EnsureAdmin(ctx, 0, "nobody"); err != nil {
		t.Fatal(err)
	}
}
