// Package memory provides the in-process duel.SessionStore. Sessions live
// for the duration of the process; durable history goes through the
// finished-game archive instead.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/quizduel/engine/internal/duel"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *duel.GameSession
}

// SessionStore is a mutex-guarded map of sessions with one lock per session.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*sessionEntry
}

var _ duel.SessionStore = (*SessionStore)(nil)

func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[uuid.UUID]*sessionEntry)}
}

func (s *SessionStore) Create(_ context.Context, session *duel.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = &sessionEntry{session: session}
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID uuid.UUID) (*duel.GameSession, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, duel.ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Clone(), nil
}

func (s *SessionStore) Update(_ context.Context, session *duel.GameSession) error {
	s.mu.RLock()
	entry, ok := s.entries[session.ID]
	s.mu.RUnlock()
	if !ok {
		return duel.ErrNotFound
	}
	entry.session = session
	return nil
}

// Lock serializes all mutations of one session. The returned func releases it.
func (s *SessionStore) Lock(_ context.Context, sessionID uuid.UUID) (*duel.GameSession, func(), error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, duel.ErrNotFound
	}
	entry.mu.Lock()
	return entry.session, entry.mu.Unlock, nil
}

func (s *SessionStore) ListByPlayer(_ context.Context, playerID uuid.UUID, finished bool) ([]*duel.GameSession, error) {
	// Snapshot the map first so no entry lock is taken while holding s.mu;
	// holding both invites lock-order inversion with concurrent writers.
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	var out []*duel.GameSession
	for _, entry := range entries {
		entry.mu.Lock()
		sess := entry.session
		if sess.IsParticipant(playerID) && (sess.Status == duel.StatusFinished) == finished {
			out = append(out, sess.Clone())
		}
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
