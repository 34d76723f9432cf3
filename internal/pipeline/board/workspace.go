package board

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/platform/clock"
)

// ErrMoveInFlight is returned when a candidate already has a pending write.
var ErrMoveInFlight = errors.New("candidate has a write in flight")

// Workspace is the process-local copy of the candidate set the board is
// derived from. Derived items are memoized per (data version, clock epoch).
type Workspace struct {
	mu         sync.RWMutex
	order      []uuid.UUID
	byID       map[uuid.UUID]domain.Candidate
	version    uint64
	inflight   map[uuid.UUID]struct{}
	memo       []Item
	memoKey    memoKey
	memoValid  bool
	clk        clock.Clock
	epoch      *clock.Epoch
	policy     domain.SLAPolicy
	privileged []string
}

type memoKey struct {
	version uint64
	epoch   uint64
}

// NewWorkspace returns an empty workspace.
func NewWorkspace(clk clock.Clock, epoch *clock.Epoch, policy domain.SLAPolicy, privileged []string) *Workspace {
	if epoch == nil {
		epoch = &clock.Epoch{}
	}
	return &Workspace{
		byID:       make(map[uuid.UUID]domain.Candidate),
		inflight:   make(map[uuid.UUID]struct{}),
		clk:        clk,
		epoch:      epoch,
		policy:     policy,
		privileged: append([]string(nil), privileged...),
	}
}

// Clock returns the clock derivations run against.
func (w *Workspace) Clock() clock.Clock { return w.clk }

// Policy returns the SLA policy derivations run against.
func (w *Workspace) Policy() domain.SLAPolicy { return w.policy }

// PrivilegedRoles returns the roles that bypass the ownership filter.
func (w *Workspace) PrivilegedRoles() []string { return w.privileged }

// Replace swaps the whole candidate set. Duplicate ids keep the first record.
func (w *Workspace) Replace(candidates []domain.Candidate) {
	order := make([]uuid.UUID, 0, len(candidates))
	byID := make(map[uuid.UUID]domain.Candidate, len(candidates))
	for _, c := range candidates {
		if _, dup := byID[c.ID]; dup {
			continue
		}
		order = append(order, c.ID)
		byID[c.ID] = c.Clone()
	}

	w.mu.Lock()
	w.order = order
	w.byID = byID
	w.version++
	w.mu.Unlock()
}

// Len returns the number of candidates held.
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Version increments on every mutation.
func (w *Workspace) Version() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Candidate returns a copy of the candidate with id.
func (w *Workspace) Candidate(id uuid.UUID) (domain.Candidate, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.byID[id]
	if !ok {
		return domain.Candidate{}, false
	}
	return c.Clone(), true
}

// Candidates returns copies of every candidate in load order.
func (w *Workspace) Candidates() []domain.Candidate {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.Candidate, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.byID[id].Clone())
	}
	return out
}

// Acquire takes the write token for id. The returned func releases it.
func (w *Workspace) Acquire(id uuid.UUID) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inflight[id]; busy {
		return nil, ErrMoveInFlight
	}
	w.inflight[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.inflight, id)
			w.mu.Unlock()
		})
	}, nil
}

// AppendEvent records a committed move: the event is appended to the log and
// status and updatedAt are set. It reports false if the candidate vanished.
func (w *Workspace) AppendEvent(id uuid.UUID, event domain.ProgressEvent, status domain.Status, at time.Time) (domain.Candidate, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.byID[id]
	if !ok {
		return domain.Candidate{}, false
	}
	c = c.Clone()
	c.ProgressTracking = append(c.ProgressTracking, event)
	c.Status = status
	c.UpdatedAt = at
	w.byID[id] = c
	w.version++
	return c.Clone(), true
}

// Remove drops the candidate with id.
func (w *Workspace) Remove(id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.byID[id]; !ok {
		return false
	}
	delete(w.byID, id)
	for i, existing := range w.order {
		if existing == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.version++
	return true
}

// Items returns the derived cards for every candidate. The result is shared
// and must not be mutated.
func (w *Workspace) Items() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := memoKey{version: w.version, epoch: w.epoch.Current()}
	if w.memoValid && w.memoKey == key {
		return w.memo
	}

	candidates := make([]domain.Candidate, 0, len(w.order))
	for _, id := range w.order {
		candidates = append(candidates, w.byID[id])
	}
	w.memo = Assess(candidates, w.policy, w.clk)
	w.memoKey = key
	w.memoValid = true
	return w.memo
}

// Item returns the derived card for id.
func (w *Workspace) Item(id uuid.UUID) (Item, bool) {
	for _, item := range w.Items() {
		if item.Candidate.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// View builds the board for viewer under filter.
func (w *Workspace) View(viewer Viewer, filter Filter) Board {
	visible := Visible(w.Items(), viewer, w.privileged)
	return Build(visible, filter, w.clk.Now())
}

// Options lists the filter choices for viewer.
func (w *Workspace) Options(viewer Viewer) Options {
	return BuildOptions(Visible(w.Items(), viewer, w.privileged))
}
