package coordinator

import (
	"context"
	"fmt"

	"talent_pipeline_backend/internal/events"
	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/platform/logger"
)

// Loader fills the workspace from the candidate store.
type Loader struct {
	ws     *board.Workspace
	source ports.CandidateSource
	fresh  ports.CandidateSource
	cache  ports.CacheInvalidator
	bus    events.Bus
	log    *logger.Logger
}

// NewLoader creates a Loader. source may be a caching wrapper around fresh;
// Refresh always reads fresh directly. cache and bus may be nil.
func NewLoader(ws *board.Workspace, source, fresh ports.CandidateSource, cache ports.CacheInvalidator, bus events.Bus, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	if fresh == nil {
		fresh = source
	}
	return &Loader{ws: ws, source: source, fresh: fresh, cache: cache, bus: bus, log: log}
}

// Load performs the initial fill. A failing store leaves the workspace empty
// so the board stays usable.
func (l *Loader) Load(ctx context.Context) int {
	candidates, err := l.source.ListCandidates(ctx)
	if err != nil {
		l.log.WithContext(ctx).Error("initial candidate load failed", "error", err)
		l.ws.Replace(nil)
		return 0
	}
	l.ws.Replace(candidates)
	l.log.WithContext(ctx).Info("candidates loaded", "count", len(candidates))
	return len(candidates)
}

// Refresh refetches every candidate from the store, bypassing the cache, and
// replaces the workspace wholesale. On failure the workspace is untouched.
func (l *Loader) Refresh(ctx context.Context, actor Actor) (int, error) {
	log := l.log.WithContext(ctx)

	if l.cache != nil {
		if err := l.cache.Invalidate(ctx); err != nil {
			log.Warn("candidate cache invalidation failed", "error", err)
		}
	}

	candidates, err := l.fresh.ListCandidates(ctx)
	if err != nil {
		log.Error("candidate refresh failed", "error", err)
		return 0, fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	}
	l.ws.Replace(candidates)

	log.Info("candidates refreshed", "count", len(candidates), "actor", actor.DisplayName())
	if l.bus != nil {
		l.bus.Publish(ctx, events.PipelineRefreshed{
			BaseEvent:  events.NewBaseEvent(l.ws.Clock().Now()),
			Candidates: len(candidates),
			Actor:      actor.DisplayName(),
		})
	}
	return len(candidates), nil
}
