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

	"github.com/medqbank/qbank-platform/internal/auth"
	"github.com/medqbank/qbank-platform/internal/config"
	"github.com/medqbank/qbank-platform/internal/db/repository"
	"github.com/medqbank/qbank-platform/internal/db/store"
	"github.com/medqbank/qbank-platform/internal/logging"
	"github.com/medqbank/qbank-platform/internal/mode"
	"github.com/medqbank/qbank-platform/internal/question"
	"github.com/medqbank/qbank-platform/internal/quiz"
	"github.com/medqbank/qbank-platform/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password,
		cfg.Postgres.Database, cfg.Postgres.SSLMode, cfg.Postgres.PoolMax)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := store.New(pool)

	questionRepo := repository.NewQuestionRepository(queries)
	quizRepo := repository.NewQuizRepository(queries)
	modeRepo := repository.NewModeRepository(queries)

	countsCache := question.NewCache(redisClient, cfg.Quiz.CountsCacheTTL)
	questionSvc := question.NewService(questionRepo, countsCache, question.ServiceOptions{
		MinTake:     cfg.Quiz.MinQuestions,
		MaxTake:     cfg.Quiz.MaxQuestions,
		DefaultTake: cfg.Quiz.DefaultCount,
	}, logger)

	modeTracker := mode.NewTracker(modeRepo, questionRepo, logger)
	quizSvc := quiz.NewService(quizRepo, questionRepo, questionSvc, modeTracker, logger)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		Issuer: cfg.Name,
	})

	quizHandlers := quiz.NewHTTPHandlers(quizSvc, logger)
	questionHandlers := question.NewHTTPHandlers(questionSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, tokens, quizHandlers, questionHandlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

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

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
