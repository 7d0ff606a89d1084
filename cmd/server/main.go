// Package main is the entrypoint for the logtrends API server.
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

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/logtrends/internal/analytics"
	"github.com/kiranshivaraju/logtrends/internal/api"
	mw "github.com/kiranshivaraju/logtrends/internal/api/middleware"
	"github.com/kiranshivaraju/logtrends/internal/api/response"
	"github.com/kiranshivaraju/logtrends/internal/cache"
	"github.com/kiranshivaraju/logtrends/internal/config"
	"github.com/kiranshivaraju/logtrends/internal/store"
	"github.com/kiranshivaraju/logtrends/internal/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	shutdownTimeout = 30 * time.Second
	migrationsDir   = "migrations"
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, failing fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel,
	})))
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"locale", cfg.Analytics.Locale,
		"reference_time", cfg.Analytics.ReferenceTime,
		"redis", cfg.Redis.URL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	// 3. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 4. Bootstrap schema for local setups
	if cfg.Database.AutoMigrate {
		if err := store.RunMigrations(cfg.Database.URL, migrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")
	}

	// 5. Optional Redis cache
	var redisCache cache.Cache
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer rc.Close()

		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		redisCache = rc
		slog.Info("redis connected")
	}

	// 6. Analytics service
	pgStore := store.NewPostgresStore(pool)
	opts, err := analytics.OptionsFromConfig(cfg.Analytics)
	if err != nil {
		return fmt.Errorf("configure analytics: %w", err)
	}
	svc := analytics.NewService(pgStore, opts...)

	// 7. Build router with dependencies
	deps := api.Dependencies{
		Analytics:         svc,
		CORSOrigins:       cfg.Server.CORSOrigins,
		TrustForwardedFor: cfg.Server.TrustProxy,
		HealthHandler:     healthHandler(pgStore, redisCache),
		MetricsHandler:    promhttp.Handler(),
	}
	if redisCache != nil {
		deps.RateLimit = mw.NewRateLimit(redisCache, cfg.Redis.RequestsPerMin)
		deps.ResponseCache = mw.NewResponseCache(redisCache, cfg.Redis.CacheTTL)
	}

	router := otelhttp.NewHandler(api.NewRouter(deps), "logtrends")

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and, when configured, cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "disabled",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if c != nil {
			checks["cache"] = "ok"
			if err := c.Ping(r.Context()); err != nil {
				checks["cache"] = "degraded"
			}
		}

		if checks["database"] != "ok" || checks["cache"] == "degraded" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
