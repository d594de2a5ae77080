package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quizduel-engine"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres  Postgres
	Redis     Redis
	Duel      Duel
	Highscore Highscore
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Redis holds cache + statistics store configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Duel groups gameplay defaults for the default duel configuration.
type Duel struct {
	DefaultConfigID   string        `env:"DUEL_DEFAULT_CONFIG_ID" envDefault:"classic"`
	QuestionCount     int           `env:"DUEL_QUESTION_COUNT" envDefault:"9"`
	Categories        []string      `env:"DUEL_CATEGORIES" envSeparator:"," envDefault:"general"`
	MaxSampleAttempts int           `env:"DUEL_MAX_SAMPLE_ATTEMPTS" envDefault:"500"`
	PoolCacheTTL      time.Duration `env:"DUEL_POOL_CACHE_TTL" envDefault:"5m"`
	NotifyChannel     string        `env:"DUEL_NOTIFY_CHANNEL_PREFIX" envDefault:"notify:player:"`
}

// Highscore governs scoring weights and snapshotting.
type Highscore struct {
	WinWeight        float64       `env:"HIGHSCORE_WIN_WEIGHT" envDefault:"100"`
	AccuracyWeight   float64       `env:"HIGHSCORE_ACCURACY_WEIGHT" envDefault:"50"`
	SnapshotInterval time.Duration `env:"HIGHSCORE_SNAPSHOT_INTERVAL" envDefault:"5m"`
	SnapshotTopN     int           `env:"HIGHSCORE_SNAPSHOT_TOP" envDefault:"50"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
