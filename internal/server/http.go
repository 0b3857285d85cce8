package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medqbank/qbank-platform/internal/auth"
	"github.com/medqbank/qbank-platform/internal/config"
	"github.com/medqbank/qbank-platform/internal/logging"
	"github.com/medqbank/qbank-platform/internal/question"
	"github.com/medqbank/qbank-platform/internal/quiz"
)

// NewHTTPServer wires routes for the API service: health and metrics
// are open; everything under /v1 requires a valid bearer token.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	pool *pgxpool.Pool,
	redisClient *redis.Client,
	tokens *auth.TokenManager,
	quizHandlers *quiz.HTTPHandlers,
	questionHandlers *question.HTTPHandlers,
) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.RequireUser(tokens, logger))

		r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
			ctx := logging.IntoContext(req.Context(), logger)
			if err := pingDependencies(ctx, pool, redisClient); err != nil {
				logger.Error().Err(err).Msg("dependency ping failed")
				http.Error(w, "upstream error", http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"pong":true}`))
		})

		r.Route("/quizzes", quizHandlers.Routes)
		r.Route("/questions", questionHandlers.Routes)
	})

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
