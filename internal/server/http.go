package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizduel/engine/internal/config"
	"github.com/quizduel/engine/internal/duel"
	"github.com/quizduel/engine/internal/highscore"
	"github.com/quizduel/engine/internal/logging"
)

// NewHTTPServer wires the API routes (health, metrics, duels, highscores).
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, duelHandlers *duel.HTTPHandlers, highscoreHandler *highscore.HTTPHandler) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.IntoContext(r.Context(), logger)
		if err := pingDependencies(ctx, pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if duelHandlers != nil {
		mux.HandleFunc("POST /v1/duels", duelHandlers.CreateGame)
		mux.HandleFunc("GET /v1/duels/{id}", duelHandlers.GetSession)
		mux.HandleFunc("POST /v1/duels/{id}/answers", duelHandlers.SubmitAnswer)
		mux.HandleFunc("GET /v1/players/{id}/duels", duelHandlers.ListSessions)
		mux.HandleFunc("POST /v1/queue", duelHandlers.Enqueue)
		mux.HandleFunc("DELETE /v1/queue/{token}", duelHandlers.DequeueWaiting)
	}

	if highscoreHandler != nil {
		mux.HandleFunc("GET /v1/highscores/{config}", highscoreHandler.Top)
		mux.HandleFunc("GET /v1/highscores/{config}/players/{id}", highscoreHandler.PlayerRecord)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if pool != nil {
		if err := pool.Ping(ctx); err != nil {
			return err
		}
	}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
