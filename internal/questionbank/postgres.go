package questionbank

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizduel/engine/internal/duel"
)

// Postgres reads the curated question bank from the questions table.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Bank = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) QuestionsByCategory(ctx context.Context, categoryID string) ([]duel.QuestionRef, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT question_id, category_id FROM questions WHERE category_id = $1 ORDER BY question_id`,
		categoryID)
	if err != nil {
		return nil, fmt.Errorf("query questions for category %s: %w", categoryID, err)
	}
	defer rows.Close()

	var refs []duel.QuestionRef
	for rows.Next() {
		var ref duel.QuestionRef
		if err := rows.Scan(&ref.QuestionID, &ref.CategoryID); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}
	return refs, nil
}

// IsCorrect checks the submitted answer against the question's correct-answer
// set. Unknown questions grade as incorrect rather than erroring: the session
// already holds a validated QuestionRef, so a miss here means the bank content
// changed underneath a running game.
func (p *Postgres) IsCorrect(ctx context.Context, questionID, answer string) (bool, error) {
	var correct bool
	err := p.pool.QueryRow(ctx,
		`SELECT $2 = ANY(correct_answers) FROM questions WHERE question_id = $1`,
		questionID, answer).Scan(&correct)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("grade answer for question %s: %w", questionID, err)
	}
	return correct, nil
}
