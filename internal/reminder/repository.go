package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists reminder_schedule rows (spec §6 "Persisted state").
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SnapshotPending replaces the full set of pending rows in one transaction
// (delete-then-insert), per spec §4.3's persistence tick.
func (r *Repository) SnapshotPending(ctx context.Context, entries []*Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reminder: begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reminder_schedule WHERE status = 'pending'`); err != nil {
		return fmt.Errorf("reminder: delete pending rows: %w", err)
	}

	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO reminder_schedule
				(reminder_id, task_id, owner_id, trigger_at, reminder_kind, status, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, e.ID, e.TaskID, e.OwnerID, e.TriggerAt, e.ReminderKind, StatusPending, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("reminder: insert pending row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reminder: commit snapshot tx: %w", err)
	}
	return nil
}

// LoadFuture reloads every row whose trigger_at is strictly after now,
// per Open Question 1's resolution (SPEC_FULL §4.3): past-due rows are not
// fired on recovery.
func (r *Repository) LoadFuture(ctx context.Context, now time.Time) ([]*Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT reminder_id, task_id, owner_id, trigger_at, reminder_kind, updated_at
		FROM reminder_schedule
		WHERE status = 'pending' AND trigger_at > $1
	`, now)
	if err != nil {
		return nil, fmt.Errorf("reminder: load future rows: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{Status: StatusPending}
		if err := rows.Scan(&e.ID, &e.TaskID, &e.OwnerID, &e.TriggerAt, &e.ReminderKind, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("reminder: scan row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPastDueCancelled marks every pending row whose trigger_at is <= now
// as cancelled, logging the recovery-time gap described in spec §4.3.
func (r *Repository) MarkPastDueCancelled(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reminder_schedule
		SET status = 'cancelled', updated_at = $1
		WHERE status = 'pending' AND trigger_at <= $1
	`, now)
	if err != nil {
		return 0, fmt.Errorf("reminder: mark past-due cancelled: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkTriggered flips one row to triggered, used after a successful fire.
func (r *Repository) MarkTriggered(ctx context.Context, reminderID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reminder_schedule SET status = 'triggered', updated_at = $2 WHERE reminder_id = $1
	`, reminderID, at)
	if err != nil && err != pgx.ErrNoRows {
		return fmt.Errorf("reminder: mark triggered: %w", err)
	}
	return nil
}
