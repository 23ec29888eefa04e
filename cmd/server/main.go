package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-classroom/internal/api"
	"github.com/p-n-ai/pai-classroom/internal/classroom"
	"github.com/p-n-ai/pai-classroom/internal/generator"
	"github.com/p-n-ai/pai-classroom/internal/platform/cache"
	"github.com/p-n-ai/pai-classroom/internal/platform/config"
	"github.com/p-n-ai/pai-classroom/internal/platform/database"
	"github.com/p-n-ai/pai-classroom/internal/platform/ratelimit"
	"github.com/p-n-ai/pai-classroom/internal/problem"
	"github.com/p-n-ai/pai-classroom/internal/task"
	"github.com/p-n-ai/pai-classroom/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	handler, cleanup, err := newHandler(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from LEARN_LOG_LEVEL and
// LEARN_LOG_FORMAT.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newHandler wires storage, cache, generator and the task service into the
// HTTP router. cleanup releases the connections it opened.
func newHandler(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	ready := map[string]api.Checker{}

	var (
		classes classroom.Store
		tasks   task.Store
		events  task.EventLogger
	)
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connecting to database: %w", err)
		}
		closers = append(closers, db.Close)
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("migrating database: %w", err)
		}
		ready["database"] = db.HealthCheck

		classStore, err := classroom.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		taskStore, err := task.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		classes, tasks, events = classStore, taskStore, task.NewPostgresEventLogger(db.Pool)
	default:
		slog.Warn("using in-memory storage; data is lost on restart")
		classes, tasks, events = classroom.NewMemoryStore(), task.NewMemoryStore(), task.NopEventLogger{}
	}

	var limit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Warn("cache unavailable, rate limiting disabled", "error", err)
		} else {
			closers = append(closers, func() { c.Close() })
			ready["cache"] = c.HealthCheck
			window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limit = ratelimit.Middleware(ratelimit.Config{
				Limiter: ratelimit.NewRedisLimiter(c, cfg.RateLimit.Max, window),
				Max:     cfg.RateLimit.Max,
				Window:  window,
			})
		}
	}

	registry, err := generator.NewBuiltinRegistry(cfg.CatalogPath)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("loading catalog: %w", err)
	}
	gen := generator.NewOrchestrator(generator.OrchestratorConfig{
		Registry: registry,
		Rand:     problem.NewRand(uint64(cfg.Generator.Seed)),
		MaxCount: cfg.Generator.MaxCount,
	})

	srv, err := api.NewServer(api.Config{
		Generator: gen,
		Tasks: task.NewService(task.ServiceConfig{
			Classes:   classes,
			Tasks:     tasks,
			Generator: gen,
			Events:    events,
		}),
		Auth:      api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer),
		RateLimit: limit,
		Ready:     ready,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return srv.Handler(), cleanup, nil
}
