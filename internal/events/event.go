// Package events defines the pipeline's domain events. The bus itself lives
// in platform/events; the aliases below let callers import a single package.
package events

import (
	"talent_pipeline_backend/platform/events"
	"talent_pipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus returns the in-process bus used by both binaries.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// CandidateStageChanged is published after a move has been committed by the
// authoritative store and applied locally.
type CandidateStageChanged struct {
	BaseEvent
	CandidateID   uuid.UUID `json:"candidateId"`
	CandidateName string    `json:"candidateName"`
	FromStage     string    `json:"fromStage"`
	ToStage       string    `json:"toStage"`
	Status        string    `json:"status"`
	Label         string    `json:"label"`
	Actor         string    `json:"actor"`
}

func (e CandidateStageChanged) EventName() string { return "pipeline.candidate.stage_changed" }

// CandidateDeleted is published after a candidate has been deleted.
type CandidateDeleted struct {
	BaseEvent
	CandidateID   uuid.UUID `json:"candidateId"`
	CandidateName string    `json:"candidateName"`
	Actor         string    `json:"actor"`
}

func (e CandidateDeleted) EventName() string { return "pipeline.candidate.deleted" }

// PipelineRefreshed is published when the workspace has been reloaded.
type PipelineRefreshed struct {
	BaseEvent
	Candidates int    `json:"candidates"`
	Actor      string `json:"actor,omitempty"`
}

func (e PipelineRefreshed) EventName() string { return "pipeline.refreshed" }

// PipelineSLABreached is published by the SLA sweep for every candidate idle
// longer than its stage allows.
type PipelineSLABreached struct {
	BaseEvent
	CandidateID   uuid.UUID `json:"candidateId"`
	CandidateName string    `json:"candidateName"`
	Consultant    string    `json:"consultant"`
	Stage         string    `json:"stage"`
	IdleDays      int       `json:"idleDays"`
	SLADays       int       `json:"slaDays"`
}

func (e PipelineSLABreached) EventName() string { return "pipeline.sla.breached" }
