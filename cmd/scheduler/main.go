package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent_pipeline_backend/internal/audit"
	"talent_pipeline_backend/internal/events"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/repository"
	"talent_pipeline_backend/internal/scheduler"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/config"
	"talent_pipeline_backend/platform/db"
	"talent_pipeline_backend/platform/logger"

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

	clk, err := clock.LoadSystem(cfg.GetPipelineTimezone())
	if err != nil {
		panic("failed to load pipeline timezone: " + err.Error())
	}
	policy, err := domain.LoadSLAPolicy(cfg.GetSLAPolicyFile())
	if err != nil {
		log.Error("failed to load sla policy", "error", err)
		panic("failed to load sla policy: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	scheduler.LogBreaches(eventBus, log)

	auditCleanup := scheduler.NewAuditCleanup(audit.NewRepository(pool), clk, log, cfg.GetAuditCleanupInterval(), cfg.GetAuditRetention())
	go auditCleanup.Run(ctx)

	sweeper := scheduler.NewSweeper(repository.New(pool), policy, clk, eventBus, log)
	worker, err := scheduler.NewWorker(cfg, sweeper, clk.Location(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	eventBus.Wait()
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
