// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Api is the entry point for the Tosho HTTP API server.

The server is a self-hosted library backend for ebooks and comics. It scans
library directories into an indexed catalog, fuses metadata from embedded
file data and external providers, and serves an authenticated, permission-
gated browsing/streaming/progress API.

Usage:

	go run cmd/api/main.go [flags]

The flags/environment variables are:

	SERVER_PORT           Port to listen on (default: 4001)
	ENVIRONMENT           deployment environment (development, production)
	DATABASE_URL          Postgres connection string (required)
	REDIS_URL             Redis connection string (required)
	JWT_SECRET            Session token signing secret (required)
	LIBRARY_DIRECTORIES   Comma-separated absolute scan roots (required)

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres and Redis.
 4. Migration: Run idempotent schema updates.
 5. Seeding: Install the permission graph and tag catalog.
 6. Wiring: Inject dependencies into domain services/handlers.
 7. Background: Start the scheduler and the library watcher.
 8. Server: Bind HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/tosho/internal/api"
	"github.com/taibuivan/tosho/internal/catalog/access"
	"github.com/taibuivan/tosho/internal/catalog/archive"
	"github.com/taibuivan/tosho/internal/catalog/author"
	"github.com/taibuivan/tosho/internal/catalog/book"
	"github.com/taibuivan/tosho/internal/catalog/tag"
	"github.com/taibuivan/tosho/internal/library/progress"
	"github.com/taibuivan/tosho/internal/metadata"
	"github.com/taibuivan/tosho/internal/metadata/googlebooks"
	"github.com/taibuivan/tosho/internal/metadata/openlibrary"
	"github.com/taibuivan/tosho/internal/platform/config"
	"github.com/taibuivan/tosho/internal/platform/constants"
	"github.com/taibuivan/tosho/internal/platform/middleware"
	"github.com/taibuivan/tosho/internal/platform/migration"
	pgstore "github.com/taibuivan/tosho/internal/platform/postgres"
	redisstore "github.com/taibuivan/tosho/internal/platform/redis"
	"github.com/taibuivan/tosho/internal/platform/scheduler"
	"github.com/taibuivan/tosho/internal/platform/sec"
	"github.com/taibuivan/tosho/internal/scan"
	"github.com/taibuivan/tosho/internal/users/account"
	"github.com/taibuivan/tosho/internal/users/auth"
	"github.com/taibuivan/tosho/internal/users/perm"
	"github.com/taibuivan/tosho/internal/watch"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries for trace correlation
	log := rawLog.With(slog.String("app", "tosho"))
	slog.SetDefault(log)

	log.Info("[Tosho] service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Adjust log level if debug mode is explicitly enabled
	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "tosho"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Any("library_directories", cfg.LibraryDirectories),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Platform Services
	// Missing JWT_SECRET is fatal here, before anything listens.
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, constants.AuthAudience)
	if err != nil {
		return fmt.Errorf("initialize token service: %w", err)
	}

	// # 7. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 8. Authorization Graph
	permSvc := perm.NewService(perm.NewPostgresRepository(pool), perm.NewRedisCache(rdb, log), log)
	if err := permSvc.SeedDefaults(startupCtx); err != nil {
		return fmt.Errorf("seed authorization defaults: %w", err)
	}
	guard := middleware.NewGuard(permSvc)

	// # 9. Tag Catalog
	tagSvc := tag.NewService(tag.NewPostgresRepository(pool), log)
	if err := tagSvc.SeedDefaults(startupCtx); err != nil {
		return fmt.Errorf("seed tag catalog: %w", err)
	}

	// # 10. Identity Services
	authSvc := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(pool),
		jwtSvc,
		permSvc,
		cfg.SessionTTL,
	)
	authHdl := auth.NewHandler(authSvc)

	accountSvc := account.NewService(account.NewPostgresRepository(pool), permSvc, log)
	accountHdl := account.NewHandler(accountSvc, guard)
	permHdl := perm.NewHandler(permSvc, guard)

	// # 11. Catalog Services
	accessSvc := access.NewService(tag.NewPostgresRepository(pool), permSvc)
	authorSvc := author.NewService(author.NewPostgresRepository(pool), log)
	archiveSvc := archive.NewService(archive.NewPostgresRepository(pool), log)
	bookSvc := book.NewService(book.NewPostgresRepository(pool), tagSvc, accessSvc, archiveSvc, log)

	bookHdl := book.NewHandler(bookSvc, authorSvc, accessSvc, guard)
	tagHdl := tag.NewHandler(tagSvc, guard)
	archiveHdl := archive.NewHandler(archiveSvc, guard)

	// # 12. Reading Progress
	progressSvc := progress.NewService(progress.NewPostgresRepository(pool), log)
	progressHdl := progress.NewHandler(progressSvc)

	// # 13. Metadata Resolver
	// Provider order defines precedence: Google Books first, Open Library fills gaps.
	resolver := metadata.NewResolver(cfg.ExternalLookupEnabled, log,
		googlebooks.NewClient(cfg.GoogleBooksAPIKey, log),
		openlibrary.NewClient(log),
	)

	// # 14. Scan Pipeline
	scanner := scan.NewScanner(bookSvc, authorSvc, tagSvc, archiveSvc, resolver, log)

	runScan := func(ctx context.Context) error {
		_, err := scanner.Scan(ctx, scan.Options{
			Roots:          cfg.LibraryDirectories,
			ExternalLookup: cfg.ExternalLookupEnabled,
			Workers:        cfg.ScanWorkers,
		})
		return err
	}

	// # 15. API Assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHdl,
		Book:      bookHdl,
		Tag:       tagHdl,
		Archive:   archiveHdl,
		Progress:  progressHdl,
		Account:   accountHdl,
		Perm:      permHdl,
	}

	// Create a background context for the whole application lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// # 16. Background Tasks
	sched := scheduler.New(log)
	sched.Register(scheduler.Task{
		ID:           "library-scan",
		Interval:     cfg.ScanInterval,
		InitialDelay: constants.ScanStartupDelay,
		Run:          runScan,
	})
	sched.Register(scheduler.Task{
		ID:       "session-audit-cleanup",
		Interval: 12 * time.Hour,
		Run: func(ctx context.Context) error {
			return auth.NewSessionRepository(pool).DeleteExpired(ctx)
		},
	})
	sched.Start(appCtx)
	defer sched.Stop()

	if cfg.WatchEnabled {
		watcher, err := watch.New(cfg.LibraryDirectories, func(ctx context.Context) {
			if err := runScan(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("watch_scan_failed", slog.Any("error", err))
			}
		}, log)
		if err != nil {
			return fmt.Errorf("initialize library watcher: %w", err)
		}
		go watcher.Run(appCtx)
	}

	// # 17. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("tosho_api_running", slog.String("port", cfg.ServerPort))

	// Block until signal or error
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	// Start Graceful Shutdown Sequence
	appCancel() // Signal background workers to stop

	log.Info("shutting_down_api_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}
