package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse_crm_backend/internal/adapters"
	"pulse_crm_backend/internal/events"
	"pulse_crm_backend/internal/interactions"
	"pulse_crm_backend/internal/scheduler"
	"pulse_crm_backend/internal/scoring"
	"pulse_crm_backend/platform/config"
	"pulse_crm_backend/platform/db"
	"pulse_crm_backend/platform/logger"
	"pulse_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side scoring wiring (no HTTP handlers required).
	interactionsModule := interactions.NewModule(pool, eventBus, val, log)
	interactionLog := adapters.NewInteractionLog(interactionsModule.Repository())
	communicationLog := adapters.NewCommunicationLog(interactionsModule.Repository())
	scoringModule := scoring.NewModule(pool, eventBus, val, cfg, log, interactionLog, communicationLog)

	recalculator := adapters.NewScoreRecalculator(scoringModule.Service())

	worker, err := scheduler.NewWorker(cfg, recalculator, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
