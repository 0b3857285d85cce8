package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"qbank-platform"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	Quiz     Quiz
	CORS     CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	PoolMax  int    `env:"PG_POOL_MAX_CONNS" envDefault:"10"`
}

// Redis holds cache configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for request authentication.
type Security struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
}

// Quiz groups question-selection and quiz-lifecycle defaults.
type Quiz struct {
	MinQuestions   int           `env:"QUIZ_MIN_QUESTIONS" envDefault:"1"`
	MaxQuestions   int           `env:"QUIZ_MAX_QUESTIONS" envDefault:"40"`
	DefaultCount   int           `env:"QUIZ_DEFAULT_COUNT" envDefault:"10"`
	CountsCacheTTL time.Duration `env:"QUIZ_COUNTS_CACHE_TTL" envDefault:"5m"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Quiz.MinQuestions < 1 || cfg.Quiz.MaxQuestions < cfg.Quiz.MinQuestions {
		return nil, fmt.Errorf("invalid quiz count bounds: min=%d max=%d", cfg.Quiz.MinQuestions, cfg.Quiz.MaxQuestions)
	}
	if cfg.Quiz.DefaultCount < cfg.Quiz.MinQuestions || cfg.Quiz.DefaultCount > cfg.Quiz.MaxQuestions {
		return nil, fmt.Errorf("quiz default count %d outside bounds [%d, %d]", cfg.Quiz.DefaultCount, cfg.Quiz.MinQuestions, cfg.Quiz.MaxQuestions)
	}
	return cfg, nil
}
