// Package session owns durable per-conversation state. Stores hand out
// deep copies; callers mutate their copy during a turn and Put it back.
package session

import (
	"context"
	"errors"

	"github.com/finsight-ai/finsight/internal/models"
)

// ErrNotFound is returned by Get and Delete for unknown session ids.
var ErrNotFound = errors.New("session: not found")

// Store is the persistence contract for sessions.
type Store interface {
	// Get returns a copy of the session, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Put inserts or replaces the session.
	Put(ctx context.Context, sess *models.Session) error
	// Delete removes the session, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	Close() error
}
