// Package inmemory provides a map-backed session store for tests and
// ephemeral runs.
package inmemory

import (
	"context"
	"sync"

	"github.com/dvloznov/ledgerbot/internal/session"
)

// Store is an in-memory implementation of session.Store.
// It is safe for concurrent use. Data is lost on restart - for persistence,
// use the sqlite store.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*session.Session
}

// NewStore creates a new in-memory session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*session.Session),
	}
}

// Get implements the session.Store interface.
func (s *Store) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[chatID]
	if !exists {
		return nil, session.ErrNotFound
	}

	// Return a copy to avoid external modifications
	sessCopy := *sess
	return &sessCopy, nil
}

// Put implements the session.Store interface.
func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external modifications
	sessCopy := *sess
	s.sessions[sess.ChatID] = &sessCopy

	return nil
}

// Delete implements the session.Store interface.
func (s *Store) Delete(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, chatID)
	return nil
}

// Ping reports the store as always reachable.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Ensure Store implements the session.Store interface.
var _ session.Store = (*Store)(nil)
