package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetpay/internal/form"
)

const sessionKeyPrefix = "session:account:"

// SessionStore keeps form sessions in Redis so a half-entered flow survives
// process restarts. The key TTL doubles as the idle-session timeout: every
// Put refreshes it, and an expired key reads as "no active session".
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store with the given idle TTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(accountID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, accountID)
}

// Get retrieves the account's session, or nil when none exists.
func (s *SessionStore) Get(ctx context.Context, accountID int64) (*form.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(accountID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var sess form.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Put stores the session, replacing any existing one and refreshing the TTL.
func (s *SessionStore) Put(ctx context.Context, sess *form.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.AccountID), data, s.ttl).Err()
}

// Delete removes the account's session. Missing keys are not an error.
func (s *SessionStore) Delete(ctx context.Context, accountID int64) error {
	return s.client.Del(ctx, sessionKey(accountID)).Err()
}

// Ensure SessionStore implements form.SessionStore.
var _ form.SessionStore = (*SessionStore)(nil)
