// Package task is the minimal Task CRUD collaborator (SPEC_FULL §6): it
// exclusively owns the task store (spec §3) and publishes exactly one
// event per mutation through internal/publisher. Auth, chat and ORM
// scaffolding are explicit spec.md Non-goals — ownership here is a bare
// X-User-ID header, not a session.
package task

import (
	"time"

	"github.com/google/uuid"
)

// ReminderStatus is the denormalized reminder lifecycle column carried on
// the task row itself (spec §3), independent of internal/reminder's
// in-heap Status. The Task API sets it to "none" or "pending" at write
// time; nothing else updates it, so "triggered"/"cancelled" are never
// written to the task row.
type ReminderStatus string

const (
	ReminderStatusNone      ReminderStatus = "none"
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusTriggered ReminderStatus = "triggered"
	ReminderStatusCancelled ReminderStatus = "cancelled"
)

// Task is the row owned exclusively by this package (spec §3). A Task
// with RecurrencePattern set and ParentRecurringTaskID nil is a template;
// children reference it via ParentRecurringTaskID and carry a unique
// OccurrenceDate per parent.
type Task struct {
	ID                    uuid.UUID
	OwnerID               uuid.UUID
	Title                 string
	Description           *string
	Completed             bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DueDate               *time.Time
	RecurrencePattern     *string
	RecurrenceEndDate     *time.Time
	ReminderOffset        *string
	ReminderStatus        ReminderStatus
	ParentRecurringTaskID *uuid.UUID
	OccurrenceDate        *time.Time
}

// CreateRequest is the body of POST /api/v1/tasks.
type CreateRequest struct {
	Title                 string     `json:"title"`
	Description           *string    `json:"description,omitempty"`
	DueDate               *time.Time `json:"due_date,omitempty"`
	RecurrencePattern     *string    `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate     *time.Time `json:"recurrence_end_date,omitempty"`
	ReminderOffset        *string    `json:"reminder_offset,omitempty"`
	ParentRecurringTaskID *uuid.UUID `json:"parent_recurring_task_id,omitempty"`
	OccurrenceDate        *time.Time `json:"occurrence_date,omitempty"`
}

// UpdateRequest is the body of PATCH /api/v1/tasks/{id}. Every field is
// optional; only present fields are applied and diffed into the
// task.updated event's Changes map.
type UpdateRequest struct {
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	RecurrencePattern *string    `json:"recurrence_pattern,omitempty"`
	RecurrenceEndDate *time.Time `json:"recurrence_end_date,omitempty"`
	ReminderOffset    *string    `json:"reminder_offset,omitempty"`
}
