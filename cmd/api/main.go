// Copyright (c) 2026 MEhub. All rights reserved.

// Command api is the entry point for the MEhub HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MathiasBorgers/MEhub-sub000/internal/api"
	"github.com/MathiasBorgers/MEhub-sub000/internal/core/script"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/config"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/constants"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/migration"
	pgstore "github.com/MathiasBorgers/MEhub-sub000/internal/platform/postgres"
	redisstore "github.com/MathiasBorgers/MEhub-sub000/internal/platform/redis"
	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/sec"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/account"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/admin"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/auth"
	"github.com/MathiasBorgers/MEhub-sub000/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[MEhub] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.SlogLevel() != slog.LevelInfo {
		leveledLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.SlogLevel(),
		}))
		log = leveledLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service ──────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTPrivateKey, cfg.JWTPublicKey, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	sessionService := session.NewService(session.NewPostgresStore(pool))
	userRepository := auth.NewUserRepository(pool)

	authService := auth.NewService(userRepository, sessionService, tokenService)
	authHandler := auth.NewHandler(authService, cfg.IsProduction())

	accountService := account.NewService(userRepository, sessionService)
	accountHandler := account.NewHandler(accountService)

	adminService := admin.NewService(userRepository, sessionService)
	adminHandler := admin.NewHandler(adminService)

	scriptService := script.NewService(
		script.NewScriptRepository(pool),
		script.NewRatingRepository(pool),
		script.NewDownloadCounter(rdb),
		script.NewListCache(rdb),
		log,
	)
	scriptHandler := script.NewHandler(scriptService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
		Admin:     adminHandler,
		Script:    scriptHandler,
	}

	assets := http.StripPrefix(constants.AssetsPrefix, http.FileServer(http.Dir(cfg.AssetsDir)))

	server := api.NewServer(
		context.Background(),
		cfg,
		log,
		tokenService,
		tokenService,
		sessionService,
		assets,
		handlers,
	)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
