// Package audit persists the pipeline audit trail.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"talent_pipeline_backend/internal/pipeline/ports"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct {
	db execer
}

func NewRepository(db execer) *Repository {
	return &Repository{db: db}
}

var _ ports.AuditWriter = (*Repository)(nil)

// WriteAudit appends one entry.
func (r *Repository) WriteAudit(ctx context.Context, entry ports.AuditEntry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO pipeline_audit_logs (candidate_id, actor_name, action, before_state, after_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.CandidateID, entry.Actor, entry.Action, nullableJSON(entry.Before), nullableJSON(entry.After), at)
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries across all candidates.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]ports.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT candidate_id, actor_name, action, before_state, after_state, created_at
		FROM pipeline_audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	items := make([]ports.AuditEntry, 0)
	for rows.Next() {
		var e ports.AuditEntry
		if err := rows.Scan(&e.CandidateID, &e.Actor, &e.Action, &e.Before, &e.After, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		items = append(items, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// DeleteBefore removes entries older than before and returns how many went.
func (r *Repository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM pipeline_audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
