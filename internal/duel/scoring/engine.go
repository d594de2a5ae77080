// Package scoring determines the outcome of a finished duel. It is pure:
// the same inputs always produce the same winner and coefficient, and
// swapping the two players' roles negates the coefficient.
package scoring

import (
	"github.com/google/uuid"
)

// Result is the per-game outcome computed when a session finishes.
type Result struct {
	WinnerID    *uuid.UUID
	Coefficient float64
	CorrectA    int
	CorrectB    int
}

// Draw reports whether neither player won.
func (r Result) Draw() bool { return r.WinnerID == nil }

// Score compares the two players' correct-answer counts and returns the
// winner (nil on a draw) and the victory coefficient: the signed win margin
// normalized by the question count, positive toward playerA. Used as a
// ranking tie-break, so determinism and symmetry matter more than the exact
// magnitude.
func Score(playerA, playerB uuid.UUID, correctA, correctB, questionCount int) Result {
	res := Result{CorrectA: correctA, CorrectB: correctB}
	if questionCount > 0 {
		res.Coefficient = float64(correctA-correctB) / float64(questionCount)
	}
	switch {
	case correctA > correctB:
		w := playerA
		res.WinnerID = &w
	case correctB > correctA:
		w := playerB
		res.WinnerID = &w
	}
	return res
}
