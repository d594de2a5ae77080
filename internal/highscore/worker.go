package highscore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// SnapshotStore persists serialized highscore snapshots.
type SnapshotStore interface {
	InsertHighscoreSnapshot(ctx context.Context, configID string, generatedAt time.Time, entries []byte, sourceHash string) error
}

// SnapshotWorker periodically persists the Redis highscore rankings so
// reporting survives a cache flush.
type SnapshotWorker struct {
	svc       *Service
	store     SnapshotStore
	configIDs []string
	interval  time.Duration
	topN      int
	logger    zerolog.Logger
}

func NewSnapshotWorker(svc *Service, store SnapshotStore, configIDs []string, interval time.Duration, topN int, logger zerolog.Logger) *SnapshotWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if topN <= 0 {
		topN = 50
	}
	return &SnapshotWorker{
		svc:       svc,
		store:     store,
		configIDs: configIDs,
		interval:  interval,
		topN:      topN,
		logger:    logger.With().Str("component", "highscore_snapshot_worker").Logger(),
	}
}

// Run blocks until context cancellation.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	if w.svc == nil || w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	for _, configID := range w.configIDs {
		if err := w.snapshot(ctx, configID); err != nil {
			w.logger.Warn().Err(err).Str("config_id", configID).Msg("snapshot failed")
		}
	}
}

func (w *SnapshotWorker) snapshot(ctx context.Context, configID string) error {
	records, err := w.svc.Top(ctx, configID, w.topN)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	sourceHash := sha256.Sum256(data)
	now := time.Now().UTC()

	if err := w.store.InsertHighscoreSnapshot(ctx, configID, now, data, hex.EncodeToString(sourceHash[:])); err != nil {
		return err
	}

	w.logger.Info().
		Str("config_id", configID).
		Int("records", len(records)).
		Time("generated_at", now).
		Msg("highscore snapshot persisted")
	return nil
}
