package scheduler

import (
	"context"
	"time"

	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/logger"
)

const (
	defaultAuditCleanupInterval = 24 * time.Hour
	defaultAuditRetention       = 180 * 24 * time.Hour
)

// AuditPruner deletes audit entries older than a cutoff.
type AuditPruner interface {
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// AuditCleanup periodically removes audit entries past the retention window.
type AuditCleanup struct {
	repo      AuditPruner
	clk       clock.Clock
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

func NewAuditCleanup(repo AuditPruner, clk clock.Clock, log *logger.Logger, interval, retention time.Duration) *AuditCleanup {
	if interval <= 0 {
		interval = defaultAuditCleanupInterval
	}
	if retention <= 0 {
		retention = defaultAuditRetention
	}

	return &AuditCleanup{
		repo:      repo,
		clk:       clk,
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

func (c *AuditCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *AuditCleanup) cleanup(ctx context.Context) {
	before := c.clk.Now().Add(-c.retention)

	deleted, err := c.repo.DeleteBefore(ctx, before)
	if err != nil {
		c.log.Warn("audit cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("audit cleanup deleted old entries", "deleted", deleted)
	}
}
