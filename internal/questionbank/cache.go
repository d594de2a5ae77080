package questionbank

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizduel/engine/internal/duel"
)

const defaultPoolTTL = 5 * time.Minute

// PoolCache is a Redis read-through cache over a Bank. Allocation reads the
// same per-category pools for every new game, so a short TTL takes most of
// that load off the bank. Grading is not cached; answers must always check
// the live correct-answer set.
type PoolCache struct {
	next   Bank
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ Bank = (*PoolCache)(nil)

func NewPoolCache(next Bank, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *PoolCache {
	if ttl <= 0 {
		ttl = defaultPoolTTL
	}
	return &PoolCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "question_pool_cache").Logger(),
	}
}

func (c *PoolCache) key(categoryID string) string {
	return "qpool:" + categoryID
}

func (c *PoolCache) QuestionsByCategory(ctx context.Context, categoryID string) ([]duel.QuestionRef, error) {
	data, err := c.client.Get(ctx, c.key(categoryID)).Bytes()
	if err == nil {
		var refs []duel.QuestionRef
		if err := json.Unmarshal(data, &refs); err == nil {
			return refs, nil
		}
		c.logger.Warn().Str("category_id", categoryID).Msg("dropping corrupted pool cache entry")
		_ = c.client.Del(ctx, c.key(categoryID)).Err()
	} else if err != redis.Nil {
		c.logger.Warn().Err(err).Str("category_id", categoryID).Msg("pool cache read failed, falling through")
	}

	refs, err := c.next.QuestionsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(refs); err == nil {
		if err := c.client.Set(ctx, c.key(categoryID), payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("category_id", categoryID).Msg("pool cache write failed")
		}
	}
	return refs, nil
}

func (c *PoolCache) IsCorrect(ctx context.Context, questionID, answer string) (bool, error) {
	return c.next.IsCorrect(ctx, questionID, answer)
}
