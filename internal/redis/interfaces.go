package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for per-account flow locking.
type LockStoreInterface interface {
	AcquireAccountLock(ctx context.Context, accountID int64, ttl time.Duration) (bool, error)
	ReleaseAccountLock(ctx context.Context, accountID int64) error
}

// Ensure concrete types implement interfaces.
var _ LockStoreInterface = (*LockStore)(nil)
