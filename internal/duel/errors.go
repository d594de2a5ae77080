package duel

import (
	"errors"
	"fmt"
)

// Submission errors: the caller's input was invalid, the session stays
// usable for subsequent valid submissions.
var (
	ErrNotParticipant  = errors.New("player is not a participant of this session")
	ErrInvalidIndex    = errors.New("question index out of range")
	ErrAlreadyAnswered = errors.New("question already answered by this player")
	ErrGameFinished    = errors.New("game already finished")
	ErrNotFound        = errors.New("session not found")
	ErrSamePlayer      = errors.New("a duel needs two distinct players")
)

// ConfigurationError signals that the category weights cannot produce an
// allocation (all weights zero).
type ConfigurationError struct {
	ConfigID string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("duel config %q has no category with positive weight", e.ConfigID)
}

// InsufficientQuestionsError names the category whose pool is too small for
// its target count.
type InsufficientQuestionsError struct {
	CategoryID string
	Need       int
	Have       int
}

func (e *InsufficientQuestionsError) Error() string {
	return fmt.Sprintf("category %q has %d questions, allocation needs %d", e.CategoryID, e.Have, e.Need)
}

// DuplicateExhaustionError reports the rejection-sampling circuit breaker
// tripping. The cap is pragmatic, not a hard impossibility proof.
type DuplicateExhaustionError struct {
	Attempts int
}

func (e *DuplicateExhaustionError) Error() string {
	return fmt.Sprintf("question sampling exceeded %d redraw attempts", e.Attempts)
}

// CountMismatchError is a defensive invariant check on the allocator output.
// Seeing one means a logic bug, never a user-triggerable state; callers
// should surface it loudly.
type CountMismatchError struct {
	Want int
	Got  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("allocation produced %d questions, want %d", e.Got, e.Want)
}

// IsSubmissionError reports whether err is a rejected-input condition
// (4xx-equivalent) rather than an engine failure.
func IsSubmissionError(err error) bool {
	return errors.Is(err, ErrNotParticipant) ||
		errors.Is(err, ErrInvalidIndex) ||
		errors.Is(err, ErrAlreadyAnswered) ||
		errors.Is(err, ErrGameFinished)
}

// IsAllocationError reports whether err belongs to the game-setup family
// (5xx-equivalent: the system could not configure the game).
func IsAllocationError(err error) bool {
	var (
		cfg  *ConfigurationError
		ins  *InsufficientQuestionsError
		dup  *DuplicateExhaustionError
		mism *CountMismatchError
	)
	return errors.As(err, &cfg) || errors.As(err, &ins) ||
		errors.As(err, &dup) || errors.As(err, &mism)
}
