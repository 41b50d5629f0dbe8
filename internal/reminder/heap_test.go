package reminder

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHeapOrdersByTriggerAt(t *testing.T) {
	h := NewHeap()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: base.Add(3 * time.Minute)})
	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: base.Add(1 * time.Minute)})
	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: base.Add(2 * time.Minute)})

	first := h.Peek()
	if first == nil || !first.TriggerAt.Equal(base.Add(1*time.Minute)) {
		t.Fatalf("Peek() = %v, want earliest entry", first)
	}

	got := h.PopIfDue(base.Add(5 * time.Minute))
	if got == nil || !got.TriggerAt.Equal(base.Add(1*time.Minute)) {
		t.Fatalf("PopIfDue = %v, want earliest entry", got)
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
}

func TestPopIfDueReturnsNilWhenNotDue(t *testing.T) {
	h := NewHeap()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: base.Add(time.Hour)})

	if got := h.PopIfDue(base); got != nil {
		t.Fatalf("PopIfDue = %v, want nil (not due yet)", got)
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (not popped)", h.Len())
	}
}

func TestRemoveByTaskID(t *testing.T) {
	h := NewHeap()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	target := uuid.New()

	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: base.Add(time.Minute)})
	h.Insert(&Entry{ID: uuid.New(), TaskID: target, TriggerAt: base.Add(2 * time.Minute)})
	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: base.Add(3 * time.Minute)})

	if !h.RemoveByTaskID(target) {
		t.Fatal("RemoveByTaskID returned false, want true")
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	for _, e := range h.Snapshot() {
		if e.TaskID == target {
			t.Fatalf("entry for %s still present after removal", target)
		}
	}

	if h.RemoveByTaskID(uuid.New()) {
		t.Fatal("RemoveByTaskID on unknown task returned true, want false")
	}
}

func TestHeapOrderingExcludesOtherFields(t *testing.T) {
	// Two entries with identical TriggerAt but different kinds/titles must
	// still heap-order correctly without panicking on comparison.
	h := NewHeap()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: at, ReminderKind: "a"})
	h.Insert(&Entry{ID: uuid.New(), TaskID: uuid.New(), TriggerAt: at, ReminderKind: "b"})

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
}
