package form

import (
	"context"
	"sync"
	"time"
)

// SessionStore holds at most one live session per account. Starting a new
// flow replaces whatever session the account had (last-write-wins, no merge).
type SessionStore interface {
	// Get returns the account's session, or nil when none exists.
	Get(ctx context.Context, accountID int64) (*Session, error)

	// Put stores the session, replacing any existing one for the account.
	Put(ctx context.Context, s *Session) error

	// Delete removes the account's session. Deleting a missing session is not
	// an error.
	Delete(ctx context.Context, accountID int64) error
}

// MemoryStore is an in-process SessionStore. Expired sessions are evicted
// lazily on access; a zero TTL disables expiry.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
}

// NewMemoryStore creates an in-memory session store with the given idle TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
	}
}

func (m *MemoryStore) Get(ctx context.Context, accountID int64) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[accountID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	if m.ttl > 0 && time.Since(s.UpdatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.sessions, accountID)
		m.mu.Unlock()
		return nil, nil
	}

	// Return a copy to avoid mutation issues.
	copy := *s
	copy.Confirmed = append([]StepValue(nil), s.Confirmed...)
	return &copy, nil
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	copy := *s
	copy.Confirmed = append([]StepValue(nil), s.Confirmed...)

	m.mu.Lock()
	m.sessions[s.AccountID] = &copy
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, accountID int64) error {
	m.mu.Lock()
	delete(m.sessions, accountID)
	m.mu.Unlock()
	return nil
}

// Ensure MemoryStore implements SessionStore.
var _ SessionStore = (*MemoryStore)(nil)
