package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a task id has no matching row.
var ErrNotFound = errors.New("task: not found")

// Repository owns the tasks table exclusively (spec §3). The Recurring
// Generator is allowed a read-only query path directly against this same
// table (see internal/recurring) — mutation only ever happens here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `
	id, owner_id, title, description, completed, created_at, updated_at,
	due_date, recurrence_pattern, recurrence_end_date, reminder_offset,
	reminder_status, parent_recurring_task_id, occurrence_date
`

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt,
		&t.DueDate, &t.RecurrencePattern, &t.RecurrenceEndDate, &t.ReminderOffset,
		&t.ReminderStatus, &t.ParentRecurringTaskID, &t.OccurrenceDate,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a new task owned by ownerID.
func (r *Repository) Create(ctx context.Context, t *Task) error {
	t.ID = uuid.New()
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	if t.ReminderStatus == "" {
		t.ReminderStatus = ReminderStatusNone
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (
			id, owner_id, title, description, completed, created_at, updated_at,
			due_date, recurrence_pattern, recurrence_end_date, reminder_offset,
			reminder_status, parent_recurring_task_id, occurrence_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, t.ID, t.OwnerID, t.Title, t.Description, t.Completed, t.CreatedAt, t.UpdatedAt,
		t.DueDate, t.RecurrencePattern, t.RecurrenceEndDate, t.ReminderOffset,
		t.ReminderStatus, t.ParentRecurringTaskID, t.OccurrenceDate)
	return err
}

// GetByID fetches a single task, or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// Update persists t's current in-memory field values; callers mutate a
// Task fetched via GetByID then pass it back here.
func (r *Repository) Update(ctx context.Context, t *Task) error {
	t.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET
			title = $2, description = $3, completed = $4, updated_at = $5,
			due_date = $6, recurrence_pattern = $7, recurrence_end_date = $8,
			reminder_offset = $9, reminder_status = $10
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Completed, t.UpdatedAt,
		t.DueDate, t.RecurrencePattern, t.RecurrenceEndDate, t.ReminderOffset, t.ReminderStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks a task completed, returning the completion timestamp.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID) (time.Time, error) {
	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET completed = true, updated_at = $2 WHERE id = $1
	`, id, now)
	if err != nil {
		return time.Time{}, err
	}
	if tag.RowsAffected() == 0 {
		return time.Time{}, ErrNotFound
	}
	return now, nil
}

// Delete removes a task permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForOwner returns ownerID's tasks, most recently updated first.
func (r *Repository) ListForOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+` FROM tasks
		WHERE owner_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
