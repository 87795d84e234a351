package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/peacewatch/peacewatch/config"
	"github.com/peacewatch/peacewatch/internal/api"
	"github.com/peacewatch/peacewatch/internal/database"
	"github.com/peacewatch/peacewatch/internal/feed"
	"github.com/peacewatch/peacewatch/internal/logger"
	"github.com/peacewatch/peacewatch/internal/matcher"
	"github.com/peacewatch/peacewatch/internal/metrics"
	middlewares "github.com/peacewatch/peacewatch/internal/middleware"
	"github.com/peacewatch/peacewatch/internal/notifier"
	"github.com/peacewatch/peacewatch/internal/ratelimit"
	"github.com/peacewatch/peacewatch/internal/realtime"
	"github.com/peacewatch/peacewatch/internal/scheduler"
	"github.com/peacewatch/peacewatch/internal/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// schedulerControl binds the process context so the admin API can restart
// the scrape loop without carrying a context through the handler layer.
type schedulerControl struct {
	ctx context.Context
	s   *scheduler.Scheduler
}

func (c schedulerControl) Start() bool     { return c.s.Start(c.ctx) }
func (c schedulerControl) Stop() bool      { return c.s.Stop() }
func (c schedulerControl) IsRunning() bool { return c.s.IsRunning() }

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Starting PeaceWatch application",
		"version", Version,
		"build_time", BuildTime,
		"git_commit", GitCommit,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	if db.IsConfigured() {
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", "error", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	// Initialize store
	st := store.New(db)

	// Realtime publisher (NATS when configured, no-op otherwise)
	publisher, err := realtime.New(cfg.Realtime)
	if err != nil {
		logger.Fatal("Failed to connect realtime publisher", "error", err)
	}
	defer publisher.Close()

	// Notification fan-out
	dispatcher := notifier.New(
		st,
		matcher.NewLocationMatcher(),
		notifier.NewEmailSender(cfg.Notifier),
		notifier.NewWhatsAppSender(cfg.Notifier),
		notifier.NewSMSSender(),
		cfg.Notifier.PreviewLength,
	)

	// Feed scrape loop
	keywords := matcher.NewKeywordMatcher(cfg.Scheduler.Keywords)
	fetcher := feed.NewWithTimeout(cfg.Scheduler.FetchTimeout)
	sched := scheduler.New(st, fetcher, keywords, publisher, cfg.Scheduler)
	if len(cfg.Scheduler.FeedURLs) > 0 {
		sched.Start(ctx)
	} else {
		logger.Warn("No feed URLs configured, scheduler idle")
	}

	// Public rate limiting: Redis-backed when available, per-process otherwise
	publicLimit := middlewares.RateLimit(cfg.Server.PublicRateLimitRPM)
	if cfg.Redis.URL != "" {
		rl, err := ratelimit.NewManager(cfg.Redis.URL)
		if err != nil {
			logger.Error("Failed to connect Redis, falling back to in-memory rate limiting", "error", err)
		} else {
			defer rl.Close()
			publicLimit = middlewares.RedisRateLimit(rl, cfg.Server.PublicRateLimitRPM)
		}
	}

	// Setup HTTP server
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.Logging)
	r.Use(middlewares.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	r.Use(middlewares.Security)

	// Initialize API handlers
	apiHandler := api.NewHandler(st, dispatcher, schedulerControl{ctx: ctx, s: sched}, cfg, publicLimit, Version)
	apiHandler.RegisterRoutes(r)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown: stop taking requests, then let the in-flight
	// scrape cycle finish before releasing the store.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if sched.Stop() {
		sched.Wait()
	}

	logger.Info("Server exited")
}

func startMetricsServer(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", "address", addr, "path", path)

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server failed", "error", err)
	}
}
