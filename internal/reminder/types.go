// Package reminder implements the Reminder Engine (spec §4.3): an
// in-memory min-heap of scheduled reminders, fired by a background tick,
// snapshotted to Postgres on a second tick.
package reminder

import (
	"time"

	"github.com/google/uuid"
)

// Status is the reminder lifecycle state (spec §4.3 "States of a reminder").
type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusTriggered Status = "triggered"
	StatusCancelled Status = "cancelled"
)

// Entry is one scheduled reminder. Only TriggerAt participates in heap
// ordering — other fields are carried along for firing and persistence.
type Entry struct {
	ID           uuid.UUID
	TaskID       uuid.UUID
	OwnerID      uuid.UUID
	TriggerAt    time.Time
	ReminderKind string
	TaskTitle    string
	DueDate      *time.Time
	Status       Status
	UpdatedAt    time.Time

	index int // heap.Interface bookkeeping, maintained by container/heap
}
