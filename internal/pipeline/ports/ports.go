// Package ports defines the interfaces the pipeline requires from the
// authoritative candidate store and its collaborators. Implementations are
// wired by the composition root.
package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"talent_pipeline_backend/internal/pipeline/domain"
)

// ErrCandidateNotFound is returned when the store has no such candidate.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateSource lists full candidate records including their progress logs.
type CandidateSource interface {
	ListCandidates(ctx context.Context) ([]domain.Candidate, error)
}

// StatusUpdate is the authoritative write issued for a move. Event is the
// progress entry the store appends alongside the status change.
type StatusUpdate struct {
	Status domain.Status
	By     string
	Event  domain.ProgressEvent
	At     time.Time
}

// StageWriter persists a status change keyed by candidate id.
type StageWriter interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
}

// CandidateDeleter removes a candidate from the authoritative store.
type CandidateDeleter interface {
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
}

// CandidateStore is the full authoritative backend.
type CandidateStore interface {
	CandidateSource
	StageWriter
	CandidateDeleter
}

// CacheInvalidator drops any cached copy of the candidate list.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Audit actions.
const (
	AuditMoveStatus = "MOVE_STATUS"
	AuditDelete     = "DELETE"
)

// AuditEntry records one committed change.
type AuditEntry struct {
	CandidateID uuid.UUID
	Actor       string
	Action      string
	Before      json.RawMessage
	After       json.RawMessage
	At          time.Time
}

// AuditWriter appends to the audit trail.
type AuditWriter interface {
	WriteAudit(ctx context.Context, entry AuditEntry) error
}
