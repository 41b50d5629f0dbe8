// Package event defines the wire shape shared by every producer and
// consumer in the coordination fabric. Nothing outside internal/publisher
// and internal/broker constructs envelopes directly.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic names match the pub/sub component routes advertised by
// /dapr/subscribe.
const (
	TopicTasksCreated          = "tasks.created"
	TopicTasksUpdated          = "tasks.updated"
	TopicTasksCompleted        = "tasks.completed"
	TopicTasksDeleted          = "tasks.deleted"
	TopicTasksReminderTriggered = "tasks.reminder-triggered"
)

// Type is the event_type carried in the envelope, distinct from the topic
// it travels on (topic is transport, type is payload shape).
type Type string

const (
	TypeTaskCreated        Type = "task.created"
	TypeTaskUpdated        Type = "task.updated"
	TypeTaskCompleted      Type = "task.completed"
	TypeTaskDeleted        Type = "task.deleted"
	TypeReminderTriggered  Type = "reminder.triggered"
)

// Envelope is the JSON shape on the wire, shared by all five topics.
// Event-specific fields live in Payload, tagged-union style, keyed by Type.
type Envelope struct {
	EventType     Type            `json:"event_type"`
	EventID       uuid.UUID       `json:"event_id"`
	Timestamp     time.Time       `json:"timestamp"`
	TaskID        uuid.UUID       `json:"task_id"`
	UserID        uuid.UUID       `json:"user_id"`
	CorrelationID *uuid.UUID      `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// FieldChange is one entry of the changes map on task.updated events.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// TaskSnapshot is the full task state, used both on task.created and
// denormalized into task.updated so downstream consumers (notably the
// Reminder Engine) never need to call back into the Task API.
type TaskSnapshot struct {
	ID                   uuid.UUID  `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description,omitempty"`
	Completed            bool       `json:"completed"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	RecurrencePattern    *string    `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate    *time.Time `json:"recurrence_end_date,omitempty"`
	ReminderOffset       *string    `json:"reminder_offset,omitempty"`
	ParentRecurringTaskID *uuid.UUID `json:"parent_recurring_task_id,omitempty"`
	OccurrenceDate       *time.Time `json:"occurrence_date,omitempty"`
}

// CreatedPayload is the payload of a task.created event.
type CreatedPayload struct {
	Task TaskSnapshot `json:"task"`
}

// UpdatedPayload is the payload of a task.updated event. Task carries the
// full post-update snapshot; Changes carries only what changed.
type UpdatedPayload struct {
	Task    TaskSnapshot           `json:"task"`
	Changes map[string]FieldChange `json:"changes"`
}

// CompletedPayload is the payload of a task.completed event.
type CompletedPayload struct {
	CompletedAt time.Time `json:"completed_at"`
}

// DeletedPayload is the (empty) payload of a task.deleted event.
type DeletedPayload struct{}

// ReminderTriggeredPayload is the payload of a reminder.triggered event.
type ReminderTriggeredPayload struct {
	ReminderKind string  `json:"reminder_kind"`
	TaskTitle    string  `json:"task_title"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

// DecodePayload unmarshals the envelope's raw payload into v.
func (e Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// TopicForType returns the canonical topic an event type is published on.
func TopicForType(t Type) string {
	switch t {
	case TypeTaskCreated:
		return TopicTasksCreated
	case TypeTaskUpdated:
		return TopicTasksUpdated
	case TypeTaskCompleted:
		return TopicTasksCompleted
	case TypeTaskDeleted:
		return TopicTasksDeleted
	case TypeReminderTriggered:
		return TopicTasksReminderTriggered
	default:
		return ""
	}
}

// AllTopics lists every topic a consuming service may subscribe to.
func AllTopics() []string {
	return []string{
		TopicTasksCreated,
		TopicTasksUpdated,
		TopicTasksCompleted,
		TopicTasksDeleted,
		TopicTasksReminderTriggered,
	}
}
