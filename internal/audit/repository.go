package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/pkg/database"
)

// ErrNotFound is returned when a task has no audit history.
var ErrNotFound = errors.New("audit: no records for task")

// Repository persists and queries audit records in Postgres.
type Repository struct {
	pool *database.Pool
}

// NewRepository builds a Repository over the shared connection pool.
func NewRepository(pool *database.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertBatch writes every record in one transaction, ignoring conflicts
// on event_id so repeated deliveries of the same event are idempotent.
func (r *Repository) InsertBatch(ctx context.Context, records []Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const stmt = `
		INSERT INTO task_events (
			event_id, event_type, task_id, user_id,
			timestamp, payload, correlation_id, partition_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, rec := range records {
		if _, err := tx.Exec(ctx, stmt,
			rec.EventID, rec.EventType, rec.TaskID, rec.UserID,
			rec.Timestamp, rec.Payload, rec.CorrelationID, rec.PartitionKey,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetTaskHistory returns events for taskID ordered by occurred-at
// ascending, limited to limit rows (defaulting to 100). Returns
// ErrNotFound when no rows match.
func (r *Repository) GetTaskHistory(ctx context.Context, taskID uuid.UUID, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT event_id, event_type, task_id, user_id,
		       timestamp, payload, correlation_id, partition_key
		FROM task_events
		WHERE task_id = $1
		ORDER BY timestamp ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, taskID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.EventID, &rec.EventType, &rec.TaskID, &rec.UserID,
			&rec.Timestamp, &rec.Payload, &rec.CorrelationID, &rec.PartitionKey,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}
