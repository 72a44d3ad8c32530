package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when no session exists for a chat
// identity.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by chat identity. Implementations must be
// safe for concurrent use; serialization of messages from the same chat is
// the caller's job (see KeyedMutex).
type Store interface {
	// Get retrieves the session for a chat identity, or ErrNotFound.
	Get(ctx context.Context, chatID int64) (*Session, error)
	// Put saves or replaces the session.
	Put(ctx context.Context, sess *Session) error
	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, chatID int64) error
}
