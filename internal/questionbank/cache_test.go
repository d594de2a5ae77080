package questionbank

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizduel/engine/internal/duel"
)

type countingBank struct {
	mu         sync.Mutex
	poolCalls  int
	gradeCalls int
	refs       []duel.QuestionRef
}

func (b *countingBank) QuestionsByCategory(_ context.Context, _ string) ([]duel.QuestionRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.poolCalls++
	return b.refs, nil
}

func (b *countingBank) IsCorrect(_ context.Context, _, answer string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gradeCalls++
	return answer == "right", nil
}

func newCacheFixture(t *testing.T) (*PoolCache, *countingBank, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bank := &countingBank{refs: []duel.QuestionRef{
		{QuestionID: "q1", CategoryID: "general"},
		{QuestionID: "q2", CategoryID: "general"},
	}}
	return NewPoolCache(bank, client, time.Minute, zerolog.Nop()), bank, mr
}

func TestPoolCacheServesSecondReadFromRedis(t *testing.T) {
	cache, bank, _ := newCacheFixture(t)
	ctx := context.Background()

	first, err := cache.QuestionsByCategory(ctx, "general")
	require.NoError(t, err)
	second, err := cache.QuestionsByCategory(ctx, "general")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, bank.poolCalls)
}

func TestPoolCacheExpiryRefetches(t *testing.T) {
	cache, bank, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := cache.QuestionsByCategory(ctx, "general")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.QuestionsByCategory(ctx, "general")
	require.NoError(t, err)
	assert.Equal(t, 2, bank.poolCalls)
}

func TestPoolCacheDropsCorruptedEntry(t *testing.T) {
	cache, bank, mr := newCacheFixture(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("qpool:general", "not-json"))

	refs, err := cache.QuestionsByCategory(ctx, "general")
	require.NoError(t, err)
	assert.Len(t, refs, 2)
	assert.Equal(t, 1, bank.poolCalls)
}

func TestGradingBypassesCache(t *testing.T) {
	cache, bank, _ := newCacheFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		correct, err := cache.IsCorrect(ctx, "q1", "right")
		require.NoError(t, err)
		assert.True(t, correct)
	}
	assert.Equal(t, 3, bank.gradeCalls)
}
