package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizduel/engine/internal/config"
	"github.com/quizduel/engine/internal/duel"
	duelqueue "github.com/quizduel/engine/internal/duel/queue"
	"github.com/quizduel/engine/internal/highscore"
	"github.com/quizduel/engine/internal/logging"
	"github.com/quizduel/engine/internal/notify"
	"github.com/quizduel/engine/internal/questionbank"
	"github.com/quizduel/engine/internal/server"
	"github.com/quizduel/engine/internal/store/memory"
	pgstore "github.com/quizduel/engine/internal/store/postgres"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	snapshotWorker *highscore.SnapshotWorker
	bgCancels      []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// Question pools come from Postgres with a Redis read-through cache in
	// front; answer checks always go to Postgres.
	bank := questionbank.NewPoolCache(
		questionbank.NewPostgres(pool),
		redisClient,
		cfg.Duel.PoolCacheTTL,
		logger,
	)

	highscoreSvc := highscore.NewService(redisClient, logger, highscore.ServiceOptions{
		Score: highscore.DefaultScoreFunc(cfg.Highscore.WinWeight, cfg.Highscore.AccuracyWeight),
		TopN:  cfg.Highscore.SnapshotTopN,
	})

	archive := pgstore.NewArchive(pool)
	sink := notify.NewRedis(redisClient, cfg.Duel.NotifyChannel, logger)
	configs := duel.NewStaticConfigSource(defaultDuelConfig(cfg.Duel))

	duelSvc := duel.NewService(
		memory.NewSessionStore(),
		bank,
		configs,
		highscoreSvc,
		archive,
		sink,
		duel.ServiceOptions{},
		logger,
	)

	queueMgr := duelqueue.NewManager(logger)
	duelHandlers := duel.NewHTTPHandlers(duelSvc, queueMgr, logger)
	highscoreHandler := highscore.NewHTTPHandler(highscoreSvc, logger)

	var snapshotWorker *highscore.SnapshotWorker
	if interval := cfg.Highscore.SnapshotInterval; interval > 0 {
		snapshotWorker = highscore.NewSnapshotWorker(
			highscoreSvc,
			archive,
			[]string{cfg.Duel.DefaultConfigID},
			interval,
			cfg.Highscore.SnapshotTopN,
			logger,
		)
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, duelHandlers, highscoreHandler)

	return &Application{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		http:           apiServer,
		snapshotWorker: snapshotWorker,
		bgCancels:      make([]context.CancelFunc, 0, 1),
	}, nil
}

// defaultDuelConfig builds the single static configuration served by this
// deployment: equal weights across the configured categories.
func defaultDuelConfig(d config.Duel) duel.DuelConfig {
	weights := make([]duel.CategoryWeight, 0, len(d.Categories))
	for _, cat := range d.Categories {
		weights = append(weights, duel.CategoryWeight{CategoryID: cat, Weight: 1})
	}
	return duel.DuelConfig{
		ID:                d.DefaultConfigID,
		Weights:           weights,
		QuestionCount:     d.QuestionCount,
		MaxSampleAttempts: d.MaxSampleAttempts,
	}
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.snapshotWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.snapshotWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("highscore snapshot worker stopped")
			}
		}()
	}
}
