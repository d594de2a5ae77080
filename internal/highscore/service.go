// Package highscore maintains the durable per-player aggregate statistics
// for each duel configuration. Counters are monotonic and updated with
// atomic Redis increments; the composite score is recomputed from the
// counters by a pluggable score function after every applied game.
package highscore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Record is one player's running statistics under one duel configuration.
// Counters only ever grow.
type Record struct {
	PlayerID         uuid.UUID `json:"player_id"`
	GamesPlayed      int       `json:"games_played"`
	GamesWon         int       `json:"games_won"`
	GamesLost        int       `json:"games_lost"`
	QuestionsPlayed  int       `json:"questions_played"`
	QuestionsCorrect int       `json:"questions_correct"`
	Score            float64   `json:"score"`
}

// ScoreFunc derives the composite ranking score from the counters. The exact
// formula is a product decision; the engine only requires determinism.
type ScoreFunc func(r Record) float64

// DefaultScoreFunc weights wins against overall answer accuracy.
func DefaultScoreFunc(winWeight, accuracyWeight float64) ScoreFunc {
	return func(r Record) float64 {
		accuracy := 0.0
		if r.QuestionsPlayed > 0 {
			accuracy = float64(r.QuestionsCorrect) / float64(r.QuestionsPlayed)
		}
		return winWeight*float64(r.GamesWon) + accuracyWeight*accuracy
	}
}

// ApplyRequest carries one player's contribution from one finished game.
type ApplyRequest struct {
	ConfigID  string
	SessionID uuid.UUID
	PlayerID  uuid.UUID
	Won       bool
	Lost      bool
	Correct   int
	Played    int
}

// ServiceOptions configures the aggregator.
type ServiceOptions struct {
	Score          ScoreFunc
	RedisKeyPrefix string
	AppliedTTL     time.Duration
	TopN           int
}

// Service folds finished games into highscore records. Writes are idempotent
// per (config, session, player): replays and retries are absorbed by an
// applied-marker, so the caller may retry failures freely.
type Service struct {
	redis      *redis.Client
	logger     zerolog.Logger
	score      ScoreFunc
	prefix     string
	appliedTTL time.Duration
	topN       int
}

func NewService(client *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	score := opts.Score
	if score == nil {
		score = DefaultScoreFunc(100, 50)
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "hs"
	}
	appliedTTL := opts.AppliedTTL
	if appliedTTL <= 0 {
		appliedTTL = 30 * 24 * time.Hour
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	return &Service{
		redis:      client,
		logger:     logger.With().Str("component", "highscore").Logger(),
		score:      score,
		prefix:     prefix,
		appliedTTL: appliedTTL,
		topN:       topN,
	}
}

// Apply increments the player's counters for one finished game and refreshes
// the ranking score. Applying the same (config, session, player) twice is a
// no-op.
func (s *Service) Apply(ctx context.Context, req ApplyRequest) error {
	marker := s.appliedKey(req.ConfigID, req.SessionID, req.PlayerID)
	first, err := s.redis.SetNX(ctx, marker, 1, s.appliedTTL).Result()
	if err != nil {
		return fmt.Errorf("set applied marker: %w", err)
	}
	if !first {
		s.logger.Debug().
			Str("session_id", req.SessionID.String()).
			Str("player_id", req.PlayerID.String()).
			Msg("highscore contribution already applied")
		return nil
	}

	recordKey := s.recordKey(req.ConfigID, req.PlayerID)
	pipe := s.redis.TxPipeline()
	pipe.HIncrBy(ctx, recordKey, "games_played", 1)
	pipe.HIncrBy(ctx, recordKey, "games_won", int64(boolToInt(req.Won)))
	pipe.HIncrBy(ctx, recordKey, "games_lost", int64(boolToInt(req.Lost)))
	pipe.HIncrBy(ctx, recordKey, "questions_played", int64(req.Played))
	pipe.HIncrBy(ctx, recordKey, "questions_correct", int64(req.Correct))
	if _, err := pipe.Exec(ctx); err != nil {
		// Roll the marker back so a caller retry is not swallowed.
		_ = s.redis.Del(ctx, marker).Err()
		return fmt.Errorf("increment highscore record: %w", err)
	}

	record, err := s.Get(ctx, req.ConfigID, req.PlayerID)
	if err != nil {
		return fmt.Errorf("reload highscore record: %w", err)
	}
	score := s.score(record)
	if err := s.redis.ZAdd(ctx, s.rankKey(req.ConfigID), redis.Z{
		Score:  score,
		Member: req.PlayerID.String(),
	}).Err(); err != nil {
		return fmt.Errorf("update highscore rank: %w", err)
	}

	s.logger.Info().
		Str("config_id", req.ConfigID).
		Str("player_id", req.PlayerID.String()).
		Bool("won", req.Won).
		Float64("score", score).
		Msg("highscore record updated")
	return nil
}

// Get loads one player's record. Missing players return a zero record.
func (s *Service) Get(ctx context.Context, configID string, playerID uuid.UUID) (Record, error) {
	data, err := s.redis.HGetAll(ctx, s.recordKey(configID, playerID)).Result()
	if err != nil {
		return Record{}, fmt.Errorf("read highscore record: %w", err)
	}
	record := Record{
		PlayerID:         playerID,
		GamesPlayed:      parseInt(data["games_played"]),
		GamesWon:         parseInt(data["games_won"]),
		GamesLost:        parseInt(data["games_lost"]),
		QuestionsPlayed:  parseInt(data["questions_played"]),
		QuestionsCorrect: parseInt(data["questions_correct"]),
	}
	record.Score = s.score(record)
	return record, nil
}

// Top returns the highest-scored records under a configuration.
func (s *Service) Top(ctx context.Context, configID string, limit int) ([]Record, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}
	members, err := s.redis.ZRevRangeWithScores(ctx, s.rankKey(configID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read highscore ranking: %w", err)
	}

	records := make([]Record, 0, len(members))
	for _, z := range members {
		playerID, err := uuid.Parse(z.Member.(string))
		if err != nil {
			s.logger.Warn().Str("member", z.Member.(string)).Msg("skipping malformed ranking member")
			continue
		}
		record, err := s.Get(ctx, configID, playerID)
		if err != nil {
			return nil, err
		}
		record.Score = z.Score
		records = append(records, record)
	}
	return records, nil
}

func (s *Service) recordKey(configID string, playerID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:rec:%s", s.prefix, configID, playerID.String())
}

func (s *Service) rankKey(configID string) string {
	return fmt.Sprintf("%s:%s:rank", s.prefix, configID)
}

func (s *Service) appliedKey(configID string, sessionID, playerID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:applied:%s:%s", s.prefix, configID, sessionID.String(), playerID.String())
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseInt(val string) int {
	if val == "" {
		return 0
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return i
}
