package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ronin/internal/config"
	"ronin/internal/database"
	"ronin/internal/events"
	"ronin/internal/logger"
	"ronin/internal/rollover"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Rollover worker error: %v", err)
	}
}

func run() error {
	log := logger.Named("rollover-worker")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Warnw("Failed to connect to AMQP, rollover events disabled", "error", err)
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	processor := rollover.NewProcessor(dbManager.DB(), publisher, cfg.RolloverConcurrency)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("Rollover worker started",
		"interval", cfg.RolloverInterval,
		"concurrency", cfg.RolloverConcurrency)

	runOnce := func(now time.Time) {
		result, err := processor.ProcessDue(ctx, now)
		if err != nil {
			log.Errorw("Rollover run failed", "error", err)
			return
		}
		log.Infow("Rollover run complete",
			"due", result.Due,
			"rolled_over", result.RolledOver,
			"failed", result.Failed,
			"next_check", now.Add(cfg.RolloverInterval).Format(time.TimeOnly))
	}

	// Catch up immediately instead of waiting a full interval.
	runOnce(time.Now())

	ticker := time.NewTicker(cfg.RolloverInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutdown signal received, stopping rollover worker")
			return nil
		case now := <-ticker.C:
			runOnce(now)
		}
	}
}
