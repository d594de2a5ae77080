package highscore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ServiceOptions) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client, zerolog.Nop(), opts)
}

func wonGame(configID string, playerID uuid.UUID, correct, played int) ApplyRequest {
	return ApplyRequest{
		ConfigID:  configID,
		SessionID: uuid.New(),
		PlayerID:  playerID,
		Won:       true,
		Correct:   correct,
		Played:    played,
	}
}

func TestApplyAccumulatesCounters(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()
	player := uuid.New()

	require.NoError(t, svc.Apply(ctx, wonGame("classic", player, 6, 9)))
	require.NoError(t, svc.Apply(ctx, ApplyRequest{
		ConfigID:  "classic",
		SessionID: uuid.New(),
		PlayerID:  player,
		Lost:      true,
		Correct:   3,
		Played:    9,
	}))

	record, err := svc.Get(ctx, "classic", player)
	require.NoError(t, err)
	assert.Equal(t, 2, record.GamesPlayed)
	assert.Equal(t, 1, record.GamesWon)
	assert.Equal(t, 1, record.GamesLost)
	assert.Equal(t, 18, record.QuestionsPlayed)
	assert.Equal(t, 9, record.QuestionsCorrect)

	// Default score: 100 per win plus 50 times accuracy.
	assert.InDelta(t, 100+50*0.5, record.Score, 1e-9)
}

func TestApplyIsIdempotentPerSessionAndPlayer(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()
	player := uuid.New()
	req := wonGame("classic", player, 5, 9)

	require.NoError(t, svc.Apply(ctx, req))
	require.NoError(t, svc.Apply(ctx, req))
	require.NoError(t, svc.Apply(ctx, req))

	record, err := svc.Get(ctx, "classic", player)
	require.NoError(t, err)
	assert.Equal(t, 1, record.GamesPlayed)
	assert.Equal(t, 5, record.QuestionsCorrect)
}

func TestConfigsAreIsolated(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()
	player := uuid.New()

	require.NoError(t, svc.Apply(ctx, wonGame("classic", player, 9, 9)))

	record, err := svc.Get(ctx, "blitz", player)
	require.NoError(t, err)
	assert.Zero(t, record.GamesPlayed)
	assert.Zero(t, record.Score)
}

func TestGetMissingPlayerReturnsZeroRecord(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})

	record, err := svc.Get(context.Background(), "classic", uuid.New())
	require.NoError(t, err)
	assert.Zero(t, record.GamesPlayed)
	assert.Zero(t, record.Score)
}

func TestTopOrdersByScore(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	leader, middle, tail := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, svc.Apply(ctx, wonGame("classic", leader, 9, 9)))
	require.NoError(t, svc.Apply(ctx, wonGame("classic", leader, 9, 9)))
	require.NoError(t, svc.Apply(ctx, wonGame("classic", middle, 5, 9)))
	require.NoError(t, svc.Apply(ctx, ApplyRequest{
		ConfigID:  "classic",
		SessionID: uuid.New(),
		PlayerID:  tail,
		Lost:      true,
		Correct:   1,
		Played:    9,
	}))

	top, err := svc.Top(ctx, "classic", 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, leader, top[0].PlayerID)
	assert.Equal(t, middle, top[1].PlayerID)
	assert.Equal(t, tail, top[2].PlayerID)
	assert.GreaterOrEqual(t, top[0].Score, top[1].Score)
	assert.GreaterOrEqual(t, top[1].Score, top[2].Score)
}

func TestTopHonorsLimit(t *testing.T) {
	svc := newTestService(t, ServiceOptions{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Apply(ctx, wonGame("classic", uuid.New(), i, 9)))
	}

	top, err := svc.Top(ctx, "classic", 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestCustomScoreFunc(t *testing.T) {
	svc := newTestService(t, ServiceOptions{
		Score: func(r Record) float64 { return float64(r.QuestionsCorrect) },
	})
	ctx := context.Background()
	player := uuid.New()

	require.NoError(t, svc.Apply(ctx, wonGame("classic", player, 7, 9)))

	record, err := svc.Get(ctx, "classic", player)
	require.NoError(t, err)
	assert.Equal(t, 7.0, record.Score)
}
