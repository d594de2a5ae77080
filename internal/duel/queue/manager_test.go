package queue

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueuePairsSameConfig(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ctx := context.Background()
	first, second := uuid.New(), uuid.New()

	_, pair, err := m.Enqueue(ctx, "classic", first)
	require.NoError(t, err)
	assert.Nil(t, pair)
	assert.Equal(t, 1, m.Waiting("classic"))

	_, pair, err = m.Enqueue(ctx, "classic", second)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "classic", pair.ConfigID)
	assert.Equal(t, first, pair.PlayerA)
	assert.Equal(t, second, pair.PlayerB)
	assert.Equal(t, 0, m.Waiting("classic"))
}

func TestEnqueueDoesNotPairAcrossConfigs(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ctx := context.Background()

	_, pair, err := m.Enqueue(ctx, "classic", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, pair)

	_, pair, err = m.Enqueue(ctx, "blitz", uuid.New())
	require.NoError(t, err)
	assert.Nil(t, pair)

	assert.Equal(t, 1, m.Waiting("classic"))
	assert.Equal(t, 1, m.Waiting("blitz"))
}

func TestEnqueueNeverPairsPlayerWithSelf(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ctx := context.Background()
	player := uuid.New()

	_, pair, err := m.Enqueue(ctx, "classic", player)
	require.NoError(t, err)
	assert.Nil(t, pair)

	_, pair, err = m.Enqueue(ctx, "classic", player)
	require.NoError(t, err)
	assert.Nil(t, pair)
	assert.Equal(t, 2, m.Waiting("classic"))
}

func TestDequeue(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ctx := context.Background()

	token, _, err := m.Enqueue(ctx, "classic", uuid.New())
	require.NoError(t, err)

	require.NoError(t, m.Dequeue(ctx, token))
	assert.Equal(t, 0, m.Waiting("classic"))

	assert.ErrorIs(t, m.Dequeue(ctx, token), ErrTokenNotFound)
	assert.ErrorIs(t, m.Dequeue(ctx, uuid.New()), ErrTokenNotFound)
}
