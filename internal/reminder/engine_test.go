package reminder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/event"
)

type fakePublisher struct {
	published []event.Type
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, eventType event.Type, taskID, ownerID uuid.UUID, payload any, correlationID *uuid.UUID) error {
	f.published = append(f.published, eventType)
	return nil
}

func newTestEngine() (*Engine, *fakePublisher) {
	pub := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewEngine(nil, pub, logger, 10*time.Second, 5*time.Minute)
	return e, pub
}

func TestHandleTaskCreatedSchedulesFutureReminder(t *testing.T) {
	e, _ := newTestEngine()
	due := time.Now().UTC().Add(2 * time.Hour)
	offset := "1 hour"

	e.HandleTaskCreated(event.TaskSnapshot{
		ID: uuid.New(), UserID: uuid.New(), Title: "buy milk",
		DueDate: &due, ReminderOffset: &offset,
	})

	if e.heap.Len() != 1 {
		t.Fatalf("heap.Len() = %d, want 1", e.heap.Len())
	}
}

func TestHandleTaskCreatedSkipsPastTrigger(t *testing.T) {
	e, _ := newTestEngine()
	due := time.Now().UTC().Add(-time.Minute) // due in the past
	offset := "1 hour"                        // trigger would be even further in the past

	e.HandleTaskCreated(event.TaskSnapshot{
		ID: uuid.New(), UserID: uuid.New(), DueDate: &due, ReminderOffset: &offset,
	})

	if e.heap.Len() != 0 {
		t.Fatalf("heap.Len() = %d, want 0 (trigger in the past)", e.heap.Len())
	}
}

func TestHandleTaskCreatedSkipsUnparseableOffset(t *testing.T) {
	e, _ := newTestEngine()
	due := time.Now().UTC().Add(time.Hour)
	offset := "tomorrow"

	e.HandleTaskCreated(event.TaskSnapshot{
		ID: uuid.New(), UserID: uuid.New(), DueDate: &due, ReminderOffset: &offset,
	})

	if e.heap.Len() != 0 {
		t.Fatalf("heap.Len() = %d, want 0 (unparseable offset)", e.heap.Len())
	}
}

func TestHandleTaskUpdatedReschedulesOnlyWhenRelevantFieldsChanged(t *testing.T) {
	e, _ := newTestEngine()
	taskID := uuid.New()
	due := time.Now().UTC().Add(time.Hour)
	offset := "10 mins"
	snapshot := event.TaskSnapshot{ID: taskID, UserID: uuid.New(), DueDate: &due, ReminderOffset: &offset}

	e.HandleTaskCreated(snapshot)
	if e.heap.Len() != 1 {
		t.Fatalf("setup: heap.Len() = %d, want 1", e.heap.Len())
	}

	// An update that doesn't touch due_date/reminder_offset must not touch
	// the existing entry.
	e.HandleTaskUpdated(snapshot, map[string]event.FieldChange{"title": {Old: "a", New: "b"}})
	if e.heap.Len() != 1 {
		t.Fatalf("after unrelated update: heap.Len() = %d, want 1", e.heap.Len())
	}

	newDue := due.Add(time.Hour)
	snapshot.DueDate = &newDue
	e.HandleTaskUpdated(snapshot, map[string]event.FieldChange{"due_date": {Old: due, New: newDue}})
	if e.heap.Len() != 1 {
		t.Fatalf("after due_date update: heap.Len() = %d, want 1 (replaced, not duplicated)", e.heap.Len())
	}
}

func TestHandleTaskCompletedAndDeletedRemoveEntry(t *testing.T) {
	e, _ := newTestEngine()
	taskID := uuid.New()
	due := time.Now().UTC().Add(time.Hour)
	offset := "10 mins"
	e.HandleTaskCreated(event.TaskSnapshot{ID: taskID, UserID: uuid.New(), DueDate: &due, ReminderOffset: &offset})

	e.HandleTaskCompleted(taskID)
	if e.heap.Len() != 0 {
		t.Fatalf("heap.Len() = %d, want 0 after completion", e.heap.Len())
	}

	e.HandleTaskCreated(event.TaskSnapshot{ID: taskID, UserID: uuid.New(), DueDate: &due, ReminderOffset: &offset})
	e.HandleTaskDeleted(taskID)
	if e.heap.Len() != 0 {
		t.Fatalf("heap.Len() = %d, want 0 after deletion", e.heap.Len())
	}
}
