package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/database"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/feed"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/logging"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/orchestrator"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/services"
	"github.com/ahmetcoskunkizilkaya/triage-engine/internal/store"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		slog.Error("failed to load moderation policy", "path", cfg.PolicyPath, "error", err)
		os.Exit(1)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cleanupDone)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Engine wiring
	recordStore := store.NewGormStore(db)
	detector := services.NewDuplicateDetector(recordStore, cfg.DuplicateWindow)
	scorer := services.NewScoringEngine(policy)
	decider := services.NewDecisionPolicy(policy)
	activity := services.NewActivityLogger(db)
	pipeline := services.NewPipeline(recordStore, detector, scorer, decider, activity)

	changeFeed := feed.NewPoller(db, cfg.FeedPollInterval)
	engine := orchestrator.New(changeFeed, recordStore, pipeline, cfg.SettleDelay)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		slog.Error("orchestrator start failed", "error", err)
		os.Exit(1)
	}

	// Recover records that went pending while the engine was offline.
	if err := engine.SweepPending(ctx); err != nil {
		slog.Error("catch-up sweep failed", "error", err)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down engine...")

	engine.Stop()
	cancel()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("engine stopped")
}
