package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore serializes flow mutations per account across instances, so only
// one inbound event can advance an account's session at a time.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireAccountLock attempts to acquire the flow lock for an account.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireAccountLock(ctx context.Context, accountID int64, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:account:%d", accountID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseAccountLock releases the flow lock for an account.
func (s *LockStore) ReleaseAccountLock(ctx context.Context, accountID int64) error {
	key := fmt.Sprintf("lock:account:%d", accountID)

	return s.client.Del(ctx, key).Err()
}
