// Package coordinator applies stage moves and deletions to the pipeline.
// Every write is fail-closed: the authoritative store is called first and the
// local workspace is only mutated once that call has succeeded.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"talent_pipeline_backend/internal/events"
	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/logger"
)

// DefaultActor is recorded when the acting consultant has no display name.
const DefaultActor = "System"

// FailureMessage is the user-facing text for any rejected write.
const FailureMessage = "更新失敗，請稍後再試"

var (
	// ErrLockedColumn is returned for drops onto the virtual today-new column.
	ErrLockedColumn = errors.New("column does not accept drops")
	// ErrInvalidStage is returned for stages outside the board.
	ErrInvalidStage = errors.New("invalid target stage")
	// ErrUpstreamRejected wraps any failure of the authoritative store.
	ErrUpstreamRejected = errors.New("authoritative store rejected the write")
	// ErrCandidateNotFound is returned for unknown or invisible candidates.
	ErrCandidateNotFound = ports.ErrCandidateNotFound
	// ErrMoveInFlight is returned while another write for the candidate is pending.
	ErrMoveInFlight = board.ErrMoveInFlight
)

// Actor is the consultant issuing a command.
type Actor struct {
	Name  string
	Roles []string
}

// DisplayName returns the name recorded in progress events and audit entries.
func (a Actor) DisplayName() string {
	if a.Name == "" {
		return DefaultActor
	}
	return a.Name
}

// Viewer returns the board viewer for a.
func (a Actor) Viewer() board.Viewer {
	return board.Viewer{Name: a.Name, Roles: a.Roles}
}

// Move is a card dropped on a column.
type Move struct {
	CandidateID uuid.UUID
	Target      domain.Stage
}

// Result describes the outcome of a move.
type Result struct {
	Candidate domain.Candidate
	From      domain.Stage
	To        domain.Stage
	Changed   bool
	Message   string
}

// Deps are the collaborators of a Coordinator. Audit and Cache are optional.
type Deps struct {
	Workspace *board.Workspace
	Writer    ports.StageWriter
	Deleter   ports.CandidateDeleter
	Audit     ports.AuditWriter
	Cache     ports.CacheInvalidator
	Bus       events.Bus
	Log       *logger.Logger
}

// Coordinator serialises writes against the workspace and the store.
type Coordinator struct {
	ws      *board.Workspace
	writer  ports.StageWriter
	deleter ports.CandidateDeleter
	audit   ports.AuditWriter
	cache   ports.CacheInvalidator
	bus     events.Bus
	log     *logger.Logger
}

// New creates a Coordinator.
func New(deps Deps) *Coordinator {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Coordinator{
		ws:      deps.Workspace,
		writer:  deps.Writer,
		deleter: deps.Deleter,
		audit:   deps.Audit,
		cache:   deps.Cache,
		bus:     deps.Bus,
		log:     log,
	}
}

// Move drops a candidate onto target.
func (c *Coordinator) Move(ctx context.Context, actor Actor, move Move) (Result, error) {
	log := c.log.WithContext(ctx)
	id := move.CandidateID

	if !move.Target.Valid() {
		return Result{}, ErrInvalidStage
	}
	if move.Target.Locked() {
		log.TransitionRejected(id.String(), move.Target.String(), "locked_column", nil)
		return Result{}, ErrLockedColumn
	}

	cand, err := c.visibleCandidate(actor, id)
	if err != nil {
		return Result{}, err
	}
	if noop, ok := c.noop(cand, move.Target); ok {
		return noop, nil
	}

	release, err := c.ws.Acquire(id)
	if err != nil {
		log.TransitionRejected(id.String(), move.Target.String(), "in_flight", nil)
		return Result{}, err
	}
	defer release()

	// Another write may have committed while we waited for the token.
	cand, err = c.visibleCandidate(actor, id)
	if err != nil {
		return Result{}, err
	}
	if noop, ok := c.noop(cand, move.Target); ok {
		return noop, nil
	}

	write, err := domain.CanonicalWrite(move.Target)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidStage, err)
	}

	clk := c.ws.Clock()
	now := clk.Now()
	by := actor.DisplayName()
	event := domain.ProgressEvent{
		Date:  clock.Today(clk).String(),
		Event: write.Label,
		By:    by,
	}
	from := domain.Classify(cand, clk)

	update := ports.StatusUpdate{Status: write.Status, By: by, Event: event, At: now}
	if err := c.writer.UpdateStatus(ctx, id, update); err != nil {
		log.TransitionRejected(id.String(), move.Target.String(), "upstream", err)
		return Result{}, fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	}

	updated, ok := c.ws.AppendEvent(id, event, write.Status, now)
	if !ok {
		// Removed by a refresh while the write was in flight; the store is
		// already updated so report the committed state.
		updated = cand.Clone()
		updated.ProgressTracking = append(updated.ProgressTracking, event)
		updated.Status = write.Status
		updated.UpdatedAt = now
	}

	c.recordAudit(ctx, ports.AuditEntry{
		CandidateID: id,
		Actor:       by,
		Action:      ports.AuditMoveStatus,
		Before:      stateJSON(cand.Status, from),
		After:       stateJSON(write.Status, move.Target),
		At:          now,
	})
	c.invalidateCache(ctx)

	log.StageTransition(id.String(), from.String(), move.Target.String(), by)
	if c.bus != nil {
		c.bus.Publish(ctx, events.CandidateStageChanged{
			BaseEvent:     events.NewBaseEvent(now),
			CandidateID:   id,
			CandidateName: cand.Name,
			FromStage:     from.String(),
			ToStage:       move.Target.String(),
			Status:        string(write.Status),
			Label:         write.Label,
			Actor:         by,
		})
	}

	return Result{
		Candidate: updated,
		From:      from,
		To:        move.Target,
		Changed:   true,
		Message:   MovedMessage(cand.Name, move.Target),
	}, nil
}

// Delete removes a candidate, first from the store and then locally.
func (c *Coordinator) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	log := c.log.WithContext(ctx)

	cand, err := c.visibleCandidate(actor, id)
	if err != nil {
		return err
	}

	release, err := c.ws.Acquire(id)
	if err != nil {
		return err
	}
	defer release()

	if err := c.deleter.DeleteCandidate(ctx, id); err != nil && !errors.Is(err, ports.ErrCandidateNotFound) {
		log.Warn("candidate delete rejected", "candidate_id", id.String(), "error", err)
		return fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	}

	c.ws.Remove(id)

	now := c.ws.Clock().Now()
	by := actor.DisplayName()
	c.recordAudit(ctx, ports.AuditEntry{
		CandidateID: id,
		Actor:       by,
		Action:      ports.AuditDelete,
		Before:      stateJSON(cand.Status, domain.Classify(cand, c.ws.Clock())),
		At:          now,
	})
	c.invalidateCache(ctx)

	log.Info("candidate deleted", "candidate_id", id.String(), "actor", by)
	if c.bus != nil {
		c.bus.Publish(ctx, events.CandidateDeleted{
			BaseEvent:     events.NewBaseEvent(now),
			CandidateID:   id,
			CandidateName: cand.Name,
			Actor:         by,
		})
	}
	return nil
}

// MovedMessage is the confirmation shown after a successful move.
func MovedMessage(name string, target domain.Stage) string {
	return fmt.Sprintf("✅ %s 已移動到「%s」", name, target.Title())
}

func (c *Coordinator) visibleCandidate(actor Actor, id uuid.UUID) (domain.Candidate, error) {
	cand, ok := c.ws.Candidate(id)
	if !ok || !actor.Viewer().CanSee(cand, c.ws.PrivilegedRoles()) {
		return domain.Candidate{}, ErrCandidateNotFound
	}
	return cand, nil
}

// noop reports a move onto the candidate's current stage. The comparison uses
// the stage before the today-new override since today-new is never a target.
func (c *Coordinator) noop(cand domain.Candidate, target domain.Stage) (Result, bool) {
	if domain.BaseStage(cand, c.ws.Clock()) != target {
		return Result{}, false
	}
	return Result{Candidate: cand, From: target, To: target}, true
}

func (c *Coordinator) recordAudit(ctx context.Context, entry ports.AuditEntry) {
	if c.audit == nil {
		return
	}
	if err := c.audit.WriteAudit(ctx, entry); err != nil {
		c.log.WithContext(ctx).Error("audit write failed", "candidate_id", entry.CandidateID.String(), "action", entry.Action, "error", err)
	}
}

func (c *Coordinator) invalidateCache(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx); err != nil {
		c.log.WithContext(ctx).Warn("candidate cache invalidation failed", "error", err)
	}
}

type stageState struct {
	Status domain.Status `json:"status"`
	Stage  domain.Stage  `json:"stage"`
}

func stateJSON(status domain.Status, stage domain.Stage) json.RawMessage {
	raw, err := json.Marshal(stageState{Status: status, Stage: stage})
	if err != nil {
		return nil
	}
	return raw
}
