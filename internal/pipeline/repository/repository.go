// Package repository is the Postgres implementation of the authoritative
// candidate store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/ports"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db DBTX
}

func New(db DBTX) *Repository {
	return &Repository{db: db}
}

var _ ports.CandidateStore = (*Repository)(nil)

// ListCandidates returns every live candidate, newest first.
func (r *Repository) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, position, COALESCE(consultant, ''), notes, status,
			progress_tracking, created_at, updated_at
		FROM candidates
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Candidate, 0)
	for rows.Next() {
		var (
			c        domain.Candidate
			status   string
			progress []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &c.Consultant, &c.Notes, &status,
			&progress, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.Status = domain.Status(status)
		c.ProgressTracking = DecodeProgress(progress)
		items = append(items, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("list candidates: %w", rows.Err())
	}

	return items, nil
}

// UpdateStatus sets the status and appends the move's progress entry in one statement.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, update ports.StatusUpdate) error {
	entry, err := json.Marshal([]domain.ProgressEvent{update.Event})
	if err != nil {
		return fmt.Errorf("encode progress event: %w", err)
	}
	at := update.At
	if at.IsZero() {
		at = time.Now()
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE candidates
		SET status = $2,
			progress_tracking = COALESCE(progress_tracking, '[]'::jsonb) || $3::jsonb,
			updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`, id, string(update.Status), entry, at)
	if err != nil {
		return fmt.Errorf("update candidate status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrCandidateNotFound
	}
	return nil
}

// DeleteCandidate soft-deletes a candidate.
func (r *Repository) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE candidates SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrCandidateNotFound
	}
	return nil
}

// DecodeProgress parses a progress_tracking document. A document that is not
// a JSON array of entries yields an empty log so one bad row cannot break the board.
func DecodeProgress(raw []byte) []domain.ProgressEvent {
	if len(raw) == 0 {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	out := make([]domain.ProgressEvent, 0, len(entries))
	for _, entry := range entries {
		var e domain.ProgressEvent
		if err := json.Unmarshal(entry, &e); err != nil {
			// Keep the slot so the label order survives; the date is unusable.
			var loose map[string]any
			if json.Unmarshal(entry, &loose) != nil {
				continue
			}
			e.Event, _ = loose["event"].(string)
			e.By, _ = loose["by"].(string)
			e.Note, _ = loose["note"].(string)
		}
		out = append(out, e)
	}
	return out
}
