package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/arjuniyer/caps-payment-core/internal/domain/payment"
)

// UserStore is a seeded, in-memory UserContextProvider. Account
// persistence and session tracking are out of scope for this core; this
// exists only to give standalone wiring (cmd/engine) something concrete
// to plug into the orchestrator's UserContextProvider seam.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]payment.UserContext
}

// NewUserStore seeds the store with the given users, keyed by UserID.
func NewUserStore(seed ...payment.UserContext) *UserStore {
	s := &UserStore{users: make(map[string]payment.UserContext, len(seed))}
	for _, u := range seed {
		s.users[u.UserID] = u
	}
	return s
}

// GetUserContext returns the seeded snapshot for userID.
func (s *UserStore) GetUserContext(ctx context.Context, userID string) (payment.UserContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return payment.UserContext{}, fmt.Errorf("no user context for %q", userID)
	}
	return u, nil
}

// Put inserts or replaces a user's snapshot.
func (s *UserStore) Put(u payment.UserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}
