// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Healthlog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the security primitives (password hasher, token codec, revocation store).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	"github.com/taibuivan/healthlog/internal/api"
	"github.com/taibuivan/healthlog/internal/medication"
	"github.com/taibuivan/healthlog/internal/platform/config"
	"github.com/taibuivan/healthlog/internal/platform/constants"
	"github.com/taibuivan/healthlog/internal/platform/mailer"
	"github.com/taibuivan/healthlog/internal/platform/metrics"
	"github.com/taibuivan/healthlog/internal/platform/migration"
	pgstore "github.com/taibuivan/healthlog/internal/platform/postgres"
	redisstore "github.com/taibuivan/healthlog/internal/platform/redis"
	"github.com/taibuivan/healthlog/internal/platform/sec"
	"github.com/taibuivan/healthlog/internal/users/account"
	"github.com/taibuivan/healthlog/internal/users/auth"
	"github.com/taibuivan/healthlog/internal/users/credential"
	"github.com/taibuivan/healthlog/internal/users/revocation"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	levelVar := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar})).
		With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		levelVar.Set(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("revocation_backend", cfg.RevocationBackend),
		slog.String("password_hash_strategy", cfg.PasswordHashStrategy),
	)

	// Root context lives as long as the process; background workers stop on cancel.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, redisstore.Settings{
		PoolSize:       cfg.RedisPoolSize,
		MaxRetries:     cfg.RedisMaxRetries,
		CommandTimeout: cfg.RedisCommandTimeout,
	}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log, cfg.Debug), "run migrations")

	// ── 6. Security ───────────────────────────────────────────────────────
	appMetrics := metrics.New()

	kdf, err := sec.NewKDF(cfg.PasswordHashStrategy, cfg.PasswordHashIterations)
	must(log, err, "select password kdf")

	hasher, err := credential.NewPasswordHasher(kdf, cfg.PasswordPepper)
	must(log, err, "initialize password hasher")

	codec, err := sec.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		sec.WithLogger(log),
		sec.WithFailureHook(appMetrics.TokenFailureHook()),
	)
	must(log, err, "initialize token codec")

	revocations, closeRevocations, err := revocation.Open(rootCtx, revocation.Options{
		Backend:       cfg.RevocationBackend,
		DefaultTTL:    codec.RefreshTTL(),
		SweepInterval: cfg.RevocationSweepInterval,
		BadgerDir:     cfg.BadgerDir,
		RedisTimeout:  cfg.RedisCommandTimeout,
	}, rdb, log)
	must(log, err, "open revocation store")
	defer func() {
		if cerr := closeRevocations(); cerr != nil {
			log.Error("revocation_store_close_failed", slog.Any("error", cerr))
		}
	}()

	if memory, ok := revocations.(*revocation.MemoryStore); ok {
		appMetrics.RegisterGauge("auth_revocation_entries", "Entries held by the in-memory revocation store.",
			func() float64 { return float64(memory.Len()) })
	}

	var sender mailer.Sender = mailer.NewLogSender(log)
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, log)
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)

	authService := auth.NewService(userRepository, resetTokenRepository, hasher, codec, revocations,
		auth.WithMailer(sender, cfg.PasswordResetURL),
		auth.WithMetrics(appMetrics),
	)
	accountService := account.NewService(userRepository, hasher, authService)
	medicationService := medication.NewService(medication.NewPostgresRepository(pool))

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       auth.NewHandler(authService),
		Account:    account.NewHandler(accountService),
		Medication: medication.NewHandler(medicationService),
	}

	server := api.NewServer(rootCtx, cfg, log, api.Security{Verifier: codec, Revocations: revocations}, appMetrics, handlers)

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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
