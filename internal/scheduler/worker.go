package scheduler

import (
	"context"
	"time"

	"talent_pipeline_backend/platform/config"
	"talent_pipeline_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// SweepTrigger marks sweeps started by the periodic schedule.
const SweepTrigger = "cron"

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	log       *logger.Logger
}

// NewWorker builds the task server and registers the periodic SLA sweep
// under cfg's cron spec, evaluated in loc.
func NewWorker(cfg config.SchedulerConfig, sweeper *Sweeper, loc *time.Location, log *logger.Logger) (*Worker, error) {
	opt, err := connOpt(cfg)
	if err != nil {
		return nil, err
	}
	queue := queueName(cfg)

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	task, err := NewSLASweepTask(SLASweepPayload{Trigger: SweepTrigger})
	if err != nil {
		return nil, err
	}
	periodic := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: loc})
	entryID, err := periodic.Register(cfg.GetSLASweepCron(), task, asynq.Queue(queue), asynq.Unique(sweepUniqueWindow))
	if err != nil {
		return nil, err
	}
	log.Info("sla sweep scheduled", "cron", cfg.GetSLASweepCron(), "entry", entryID)

	mux := asynq.NewServeMux()
	mux.Handle(TaskSLASweep, sweeper)

	return &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		log:       log,
	}, nil
}

// Run serves tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("scheduler worker failed to start", "error", err)
		return
	}
	if err := w.scheduler.Start(); err != nil {
		w.log.Error("sla sweep scheduler failed to start", "error", err)
		w.server.Shutdown()
		return
	}

	<-ctx.Done()
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.log.Info("scheduler worker stopped")
}
