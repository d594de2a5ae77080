package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultChannelPrefix = "notify:player:"

// Redis publishes events on a per-player Pub/Sub channel for whatever push
// pipeline the surrounding system runs.
type Redis struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

var _ Sink = (*Redis)(nil)

func NewRedis(client *redis.Client, channelPrefix string, logger zerolog.Logger) *Redis {
	if channelPrefix == "" {
		channelPrefix = defaultChannelPrefix
	}
	return &Redis{
		client: client,
		prefix: channelPrefix,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

func (r *Redis) Notify(ctx context.Context, playerID uuid.UUID, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to marshal notification")
		return
	}
	if err := r.client.Publish(ctx, r.prefix+playerID.String(), payload).Err(); err != nil {
		r.logger.Warn().Err(err).
			Str("player_id", playerID.String()).
			Str("event", event.Type).
			Msg("failed to publish notification")
	}
}
