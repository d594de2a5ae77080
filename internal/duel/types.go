package duel

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle states. Turn labels are descriptive: they report whose
// next unanswered question is pending, they never block a submission.
const (
	StatusAwaitingBoth = "awaiting_both"
	StatusTurnA        = "turn_a"
	StatusTurnB        = "turn_b"
	StatusFinished     = "finished"
)

// AnswerOutcome is the per-question result recorded for one player.
type AnswerOutcome int8

const (
	OutcomeUnanswered AnswerOutcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o AnswerOutcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "unanswered"
	}
}

func (o AnswerOutcome) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// CategoryWeight maps a question category to its relative draw weight.
// Read-only to the engine; supplied by the duel configuration.
type CategoryWeight struct {
	CategoryID string
	Weight     int
}

// QuestionRef is the immutable identity of a question in the external bank.
type QuestionRef struct {
	QuestionID string `json:"question_id"`
	CategoryID string `json:"category_id"`
}

// DuelConfig is the per-configuration contract supplied by a ConfigSource.
type DuelConfig struct {
	ID                string
	Weights           []CategoryWeight
	QuestionCount     int
	MaxSampleAttempts int
}

// GameSession holds two players, the allocated question list and both
// players' independent progress. Owned exclusively by the session store;
// mutated only under the store's per-session lock.
type GameSession struct {
	ID        uuid.UUID
	ConfigID  string
	PlayerA   uuid.UUID
	PlayerB   uuid.UUID
	Questions []QuestionRef
	AnsweredA []AnswerOutcome
	AnsweredB []AnswerOutcome
	Status    string
	WinnerID  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsParticipant reports whether the given player owns a seat in the session.
func (s *GameSession) IsParticipant(playerID uuid.UUID) bool {
	return playerID == s.PlayerA || playerID == s.PlayerB
}

// OutcomesFor returns the answer sequence owned by the given player.
func (s *GameSession) OutcomesFor(playerID uuid.UUID) []AnswerOutcome {
	if playerID == s.PlayerA {
		return s.AnsweredA
	}
	return s.AnsweredB
}

// Complete reports whether both answer sequences are fully populated.
func (s *GameSession) Complete() bool {
	return answeredCount(s.AnsweredA) == len(s.Questions) &&
		answeredCount(s.AnsweredB) == len(s.Questions)
}

func answeredCount(outcomes []AnswerOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o != OutcomeUnanswered {
			n++
		}
	}
	return n
}

// CorrectCount tallies correct outcomes in a sequence.
func CorrectCount(outcomes []AnswerOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o == OutcomeCorrect {
			n++
		}
	}
	return n
}

// AnswerResult is what SubmitAnswer reports back to the caller.
type AnswerResult struct {
	SessionID     uuid.UUID     `json:"session_id"`
	QuestionIndex int           `json:"question_index"`
	Outcome       AnswerOutcome `json:"outcome"`
	Finished      bool          `json:"finished"`
	WinnerID      *uuid.UUID    `json:"winner_id,omitempty"`
}

// Clone returns a deep copy so readers never alias store-owned state.
func (s *GameSession) Clone() *GameSession {
	out := *s
	out.Questions = append([]QuestionRef(nil), s.Questions...)
	out.AnsweredA = append([]AnswerOutcome(nil), s.AnsweredA...)
	out.AnsweredB = append([]AnswerOutcome(nil), s.AnsweredB...)
	if s.WinnerID != nil {
		w := *s.WinnerID
		out.WinnerID = &w
	}
	return &out
}
