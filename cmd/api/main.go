package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/cleanhub/cleanhub-api/internal/config"
	"github.com/cleanhub/cleanhub-api/internal/domain/cleaner"
	"github.com/cleanhub/cleanhub-api/internal/domain/points"
	"github.com/cleanhub/cleanhub-api/internal/domain/policy"
	"github.com/cleanhub/cleanhub-api/internal/middleware"
	"github.com/cleanhub/cleanhub-api/internal/pkg/database"
	"github.com/cleanhub/cleanhub-api/internal/pkg/jwt"
	"github.com/cleanhub/cleanhub-api/internal/pkg/logger"
	pkgresponse "github.com/cleanhub/cleanhub-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	if cfg.IsProduction() && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CleanHub API")

	if cfg.IsDevelopment() {
		log.Debug().
			Str("database_url", cfg.DatabaseURL).
			Str("redis_url", cfg.RedisURL).
			Msg("Loaded configuration")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories and services ----------
	cleanerRepo := cleaner.NewRepository(db)

	pointsRepo := points.NewRepositoryWithRetries(db, cfg.TxMaxRetries)
	coordinator := points.NewService(pointsRepo)
	batch := points.NewBatch(coordinator)

	policyStore := policy.NewCachedStore(policy.NewRepository(db), redis, cfg.PolicyCacheTTL)
	resolver := policy.NewResolver(policyStore)

	// ---------- Handlers ----------
	cleanerHandler := cleaner.NewHandler(cleanerRepo)
	pointsHandler := points.NewHandler(coordinator, batch, resolver)
	policyHandler := policy.NewHandler(policyStore)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())

		r.Mount("/cleaners", cleanerHandler.Routes())
		r.Mount("/cleaners/{id}/points", pointsHandler.CleanerRoutes())
		r.Mount("/points", pointsHandler.Routes())
		r.Mount("/policy", policyHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
