package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent_pipeline_backend/internal/adapters/storage"
	"talent_pipeline_backend/internal/events"
	apphttp "talent_pipeline_backend/internal/http"
	"talent_pipeline_backend/internal/http/router"
	"talent_pipeline_backend/internal/pipeline"
	"talent_pipeline_backend/internal/pipeline/cache"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/migrations"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/config"
	"talent_pipeline_backend/platform/db"
	"talent_pipeline_backend/platform/logger"
	"talent_pipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	log.Info("database connection established")

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	clk, err := clock.LoadSystem(cfg.GetPipelineTimezone())
	if err != nil {
		panic("failed to load pipeline timezone: " + err.Error())
	}
	policy, err := domain.LoadSLAPolicy(cfg.GetSLAPolicyFile())
	if err != nil {
		log.Error("failed to load sla policy", "error", err)
		panic("failed to load sla policy: " + err.Error())
	}

	rdb, closeRedis := initCache(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	reports := initReportStore(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	epoch := &clock.Epoch{}
	deps := pipeline.Deps{
		Pool:      pool,
		Bus:       eventBus,
		Validator: val,
		Clock:     clk,
		Epoch:     epoch,
		Policy:    policy,
		Config:    cfg,
		Log:       log,
	}
	if rdb != nil {
		deps.Redis = rdb
	}
	if reports != nil {
		deps.Storage = reports
	}
	pipelineModule, err := pipeline.NewModule(deps)
	if err != nil {
		log.Error("failed to initialize pipeline module", "error", err)
		panic("failed to initialize pipeline module: " + err.Error())
	}
	pipelineModule.Start(ctx)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules:  []apphttp.Module{pipelineModule},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clock.RunTicker(gctx, cfg.GetPipelineTickInterval(), epoch, func(n uint64) {
			log.Debug("pipeline clock tick", "epoch", n)
		})
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	eventBus.Wait()
}

func initCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (*redis.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; candidate cache disabled")
		return nil, nil
	}

	rdb, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis; candidate cache disabled", "error", err)
		return nil, nil
	}

	return rdb, func() {
		_ = rdb.Close()
	}
}

func initReportStore(cfg *config.Config, log *logger.Logger) *storage.MinIOService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; report archiving disabled")
		return nil
	}

	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	log.Info("storage service initialized", "reportsBucket", cfg.GetMinioBucketPipelineReports())
	return svc
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
