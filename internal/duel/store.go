package duel

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore owns all GameSession state. Implementations must serialize
// mutations per session: Lock grants exclusive access to one session, and
// every record-answer + completion-check sequence runs under it, so two
// racing final answers can never both observe the finish transition.
type SessionStore interface {
	// Create persists a new session. The store takes ownership of the value.
	Create(ctx context.Context, session *GameSession) error
	// Get returns a copy of the session, or ErrNotFound.
	Get(ctx context.Context, sessionID uuid.UUID) (*GameSession, error)
	// Lock checks the session out for mutation: it acquires the per-session
	// mutex and returns the live session plus the unlock function, or
	// ErrNotFound for an unknown session. Mutations made while holding the
	// lock must be committed with Update before unlocking.
	Lock(ctx context.Context, sessionID uuid.UUID) (*GameSession, func(), error)
	// Update replaces the stored session. Call only while holding the lock.
	Update(ctx context.Context, session *GameSession) error
	// ListByPlayer returns copies of the player's sessions, partitioned by
	// whether they are finished.
	ListByPlayer(ctx context.Context, playerID uuid.UUID, finished bool) ([]*GameSession, error)
}
