// Package notify delivers fire-and-forget player notifications. Delivery is
// best effort: a sink failure is logged by its implementation and never rolls
// back or blocks a game-state transition.
package notify

import (
	"context"

	"github.com/google/uuid"
)

// Event types emitted by the duel engine.
const (
	EventTurnAdvance  = "turn_advance"
	EventGameFinished = "game_finished"
)

// Event describes something a player should hear about.
type Event struct {
	Type      string     `json:"type"`
	SessionID uuid.UUID  `json:"session_id"`
	WinnerID  *uuid.UUID `json:"winner_id,omitempty"`
}

// Sink accepts notifications for a player.
type Sink interface {
	Notify(ctx context.Context, playerID uuid.UUID, event Event)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, Event) {}
