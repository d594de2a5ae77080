// Package questionbank is the engine's view of the external question bank.
// The engine never mutates question content; it only reads per-category
// pools during allocation and checks submitted answers.
package questionbank

import (
	"context"

	"github.com/quizduel/engine/internal/duel"
)

// Bank supplies question identities per category and grades answers against
// the correct-answer set.
type Bank interface {
	QuestionsByCategory(ctx context.Context, categoryID string) ([]duel.QuestionRef, error)
	IsCorrect(ctx context.Context, questionID, answer string) (bool, error)
}
