// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

// Command admin is the entry point for the Scholaris admin gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (audit trail) and run migrations.
//  4. Connect to Redis (session cache).
//  5. Build the auth client (with JWKS verifier when configured).
//  6. Start the audit dispatcher.
//  7. Wire HTTP handlers and both guard tiers.
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

	"github.com/scholaris/admin-gateway/internal/api"
	"github.com/scholaris/admin-gateway/internal/audit"
	"github.com/scholaris/admin-gateway/internal/authclient"
	"github.com/scholaris/admin-gateway/internal/platform/config"
	"github.com/scholaris/admin-gateway/internal/platform/constants"
	"github.com/scholaris/admin-gateway/internal/platform/migration"
	pgstore "github.com/scholaris/admin-gateway/internal/platform/postgres"
	redisstore "github.com/scholaris/admin-gateway/internal/platform/redis"
	"github.com/scholaris/admin-gateway/internal/proxy"
	"github.com/scholaris/admin-gateway/internal/session"
	"github.com/scholaris/admin-gateway/internal/web"
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

	log.Info("[Scholaris] gateway_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Application context governs background goroutines (rate limiter
	// cleanup, JWKS refresh); cancelled on shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL & Migrations ────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Auth Client ────────────────────────────────────────────────────
	var verifier *authclient.Verifier
	if cfg.AuthJWKSURL != "" {
		verifier, err = authclient.NewVerifier(appCtx, cfg.AuthJWKSURL, log)
		must(log, err, "initialize jwks verifier")
	} else {
		log.Warn("jwks_verification_disabled",
			slog.String("reason", "AUTH_JWKS_URL not configured; rehydration always calls the remote API"),
		)
	}
	authClient := authclient.New(cfg.APIBaseURL, verifier, log)

	// ── 6. Audit Dispatcher ───────────────────────────────────────────────
	auditStore := audit.NewPostgresStore(pool)
	auditor := audit.NewDispatcher(auditStore, 0, log)
	defer auditor.Close()

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckUpstream: func() error {
			return authClient.Ping(context.Background())
		},
	}, log)

	// ── 8. Session & Handler Wiring ───────────────────────────────────────
	sessionCache := session.NewCache(rdb)
	cookies := session.NewCookies(cfg.CookieSecure)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      web.NewAuthHandler(auditor, log),
		Session:   web.NewSessionHandler(),
		Pages:     web.NewPagesHandler(),
		Audit:     web.NewAuditHandler(auditStore),
		Proxy:     proxy.New(cfg.APIBaseURL, log),
	}

	deps := api.Dependencies{
		AuthClient: authClient,
		Cache:      sessionCache,
		Cookies:    cookies,
		Auditor:    auditor,
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(appCtx, cfg, log, deps, handlers)

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
