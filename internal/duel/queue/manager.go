// Package queue pairs waiting players into duels. Pairing is first-come
// within the same duel configuration; the resulting pair is handed to the
// duel service for game creation.
package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrTokenNotFound is returned when a queue token is unknown or already consumed.
var ErrTokenNotFound = errors.New("queue token not found")

// WaitingPlayer represents a queued player.
type WaitingPlayer struct {
	PlayerID   uuid.UUID
	ConfigID   string
	QueuedAt   time.Time
	QueueToken uuid.UUID
}

// Pair is a matched opponent pair ready for game creation.
type Pair struct {
	ConfigID string
	PlayerA  uuid.UUID
	PlayerB  uuid.UUID
}

// Manager holds the in-memory waiting list.
type Manager struct {
	mu      sync.RWMutex
	waiting map[uuid.UUID]*WaitingPlayer
	logger  zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		waiting: make(map[uuid.UUID]*WaitingPlayer),
		logger:  logger.With().Str("component", "match_queue").Logger(),
	}
}

// Enqueue adds a player and attempts immediate pairing against the waiting
// list. Returns the queue token and, when an opponent was found, the pair.
func (m *Manager) Enqueue(_ context.Context, configID string, playerID uuid.UUID) (uuid.UUID, *Pair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	queueToken := uuid.New()
	for otherToken, other := range m.waiting {
		if other.PlayerID == playerID || other.ConfigID != configID {
			continue
		}
		delete(m.waiting, otherToken)
		pair := &Pair{
			ConfigID: configID,
			PlayerA:  other.PlayerID,
			PlayerB:  playerID,
		}
		m.logger.Info().
			Str("config_id", configID).
			Str("player_a", pair.PlayerA.String()).
			Str("player_b", pair.PlayerB.String()).
			Msg("players paired")
		return queueToken, pair, nil
	}

	m.waiting[queueToken] = &WaitingPlayer{
		PlayerID:   playerID,
		ConfigID:   configID,
		QueuedAt:   time.Now(),
		QueueToken: queueToken,
	}
	m.logger.Info().
		Str("queue_token", queueToken.String()).
		Str("player_id", playerID.String()).
		Msg("player enqueued")
	return queueToken, nil, nil
}

// Dequeue removes a waiting player.
func (m *Manager) Dequeue(_ context.Context, queueToken uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.waiting[queueToken]; !exists {
		return ErrTokenNotFound
	}
	delete(m.waiting, queueToken)
	m.logger.Info().Str("queue_token", queueToken.String()).Msg("player dequeued")
	return nil
}

// Waiting reports the current waiting-list size for a configuration.
func (m *Manager) Waiting(configID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, player := range m.waiting {
		if player.ConfigID == configID {
			n++
		}
	}
	return n
}
