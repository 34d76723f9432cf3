package scheduler

import (
	"context"
	"fmt"

	"talent_pipeline_backend/internal/events"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// SweepResult summarises one pass over the store.
type SweepResult struct {
	Candidates int
	Overdue    int
}

// Sweeper reads every candidate from the store and reports those idle past
// their stage's SLA.
type Sweeper struct {
	source ports.CandidateSource
	policy domain.SLAPolicy
	clk    clock.Clock
	bus    events.Bus
	log    *logger.Logger
}

func NewSweeper(source ports.CandidateSource, policy domain.SLAPolicy, clk clock.Clock, bus events.Bus, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Discard()
	}
	return &Sweeper{source: source, policy: policy, clk: clk, bus: bus, log: log}
}

// Sweep publishes one PipelineSLABreached per overdue candidate.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	candidates, err := s.source.ListCandidates(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("sla sweep: %w", err)
	}

	now := s.clk.Now()
	res := SweepResult{Candidates: len(candidates)}
	for _, c := range candidates {
		a := s.policy.Assess(c, s.clk)
		if !a.Overdue {
			continue
		}
		res.Overdue++
		if s.bus == nil {
			continue
		}
		s.bus.Publish(ctx, events.PipelineSLABreached{
			BaseEvent:     events.NewBaseEvent(now),
			CandidateID:   c.ID,
			CandidateName: c.Name,
			Consultant:    c.ConsultantOrDefault(),
			Stage:         a.Stage.String(),
			IdleDays:      a.IdleDays,
			SLADays:       a.SLADays,
		})
	}

	s.log.WithContext(ctx).SLASweep(res.Candidates, res.Overdue)
	return res, nil
}

// ProcessTask runs a sweep for an asynq task.
func (s *Sweeper) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSLASweepPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	s.log.Debug("sla sweep started", "trigger", payload.Trigger, "requestedBy", payload.RequestedBy)
	_, err = s.Sweep(ctx)
	return err
}

// LogBreaches subscribes a handler that records every breach in the log.
func LogBreaches(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.PipelineSLABreached{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.PipelineSLABreached)
		if !ok {
			return nil
		}
		log.WithContext(ctx).Warn("sla breached",
			"candidate_id", e.CandidateID.String(),
			"candidate", e.CandidateName,
			"consultant", e.Consultant,
			"stage", e.Stage,
			"idle_days", e.IdleDays,
			"sla_days", e.SLADays,
		)
		return nil
	}))
}
