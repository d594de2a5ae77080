// Package postgres persists what must outlive the process: the durable
// record of finished duels and periodic highscore snapshots. Live session
// state never touches the database; it stays in the in-process store.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizduel/engine/internal/duel"
	"github.com/quizduel/engine/internal/duel/scoring"
)

// Archive writes finished-game rows and highscore snapshots.
type Archive struct {
	pool *pgxpool.Pool
}

func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// ArchiveFinished records the final outcome of one duel. Inserts are
// idempotent on the session id so a retried finalization cannot duplicate.
func (a *Archive) ArchiveFinished(ctx context.Context, session *duel.GameSession, result scoring.Result) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO game_archive (
			session_id, config_id, player_a, player_b,
			correct_a, correct_b, winner_id, victory_coefficient,
			question_count, created_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id) DO NOTHING`,
		session.ID, session.ConfigID, session.PlayerA, session.PlayerB,
		result.CorrectA, result.CorrectB, result.WinnerID, result.Coefficient,
		len(session.Questions), session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("archive finished game %s: %w", session.ID, err)
	}
	return nil
}

// InsertHighscoreSnapshot stores one serialized top-N snapshot.
func (a *Archive) InsertHighscoreSnapshot(ctx context.Context, configID string, generatedAt time.Time, entries []byte, sourceHash string) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO highscore_snapshots (config_id, generated_at, entries, source_hash)
		VALUES ($1, $2, $3, $4)`,
		configID, generatedAt, entries, sourceHash)
	if err != nil {
		return fmt.Errorf("insert highscore snapshot for %s: %w", configID, err)
	}
	return nil
}
