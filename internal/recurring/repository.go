// Package recurring implements the Recurring-Task Generator (spec §4.2):
// a periodic scheduler tick that materializes child task instances for
// every template task by calling the Task API.
package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Template is the subset of a template task's fields the generator needs
// (spec §4.2 step 2: "tasks where recurrence-pattern is set, not
// completed, parent-recurring-id is null, and recurrence-end is null or
// in the future").
type Template struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	Title             string
	Description       *string
	RecurrencePattern string
	ReminderOffset    *string
	CreatedAt         time.Time
}

// Repository is a read-only query path directly against the tasks table
// (spec §3 still reserves all writes to the Task API; only step 4's child
// creation goes through taskapiclient). Grounded on
// internal/job/scheduler.go's processDueSchedules poll, generalized from
// a due-row query to a template-task query.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListTemplates returns every template task due for a materialization
// check at asOf, per spec §4.2 step 2's filter.
func (r *Repository) ListTemplates(ctx context.Context, asOf time.Time) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, title, description, recurrence_pattern, reminder_offset, created_at
		FROM tasks
		WHERE recurrence_pattern IS NOT NULL
		  AND completed = false
		  AND parent_recurring_task_id IS NULL
		  AND (recurrence_end_date IS NULL OR recurrence_end_date > $1)
	`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.RecurrencePattern, &t.ReminderOffset, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// InstanceExists reports whether templateID already has a child task for
// occurrenceDate (spec §4.2 step 3).
func (r *Repository) InstanceExists(ctx context.Context, templateID uuid.UUID, occurrenceDate time.Time) (bool, error) {
	var exists int
	err := r.pool.QueryRow(ctx, `
		SELECT 1 FROM tasks
		WHERE parent_recurring_task_id = $1 AND occurrence_date = $2
		LIMIT 1
	`, templateID, occurrenceDate).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
