// Package audit ingests task events into a batched, idempotent,
// append-only store and serves chronological per-task queries.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/event"
)

// Record is one row of the task_events store.
type Record struct {
	EventID       uuid.UUID       `json:"event_id"`
	EventType     event.Type      `json:"event_type"`
	TaskID        uuid.UUID       `json:"task_id"`
	UserID        uuid.UUID      `json:"user_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	CorrelationID *uuid.UUID      `json:"correlation_id,omitempty"`
	PartitionKey  time.Time       `json:"partition_key"`
}

// partitionKey returns the first day of the month containing occurredAt,
// truncated to midnight UTC.
func partitionKey(occurredAt time.Time) time.Time {
	u := occurredAt.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FromEnvelope builds the audit record enriched with its partition key.
func FromEnvelope(env event.Envelope) Record {
	return Record{
		EventID:       env.EventID,
		EventType:     env.EventType,
		TaskID:        env.TaskID,
		UserID:        env.UserID,
		Timestamp:     env.Timestamp,
		Payload:       env.Payload,
		CorrelationID: env.CorrelationID,
		PartitionKey:  partitionKey(env.Timestamp),
	}
}
