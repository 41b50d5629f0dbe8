package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCreateRejectsEmptyTitle(t *testing.T) {
	s := NewService(nil, nil)
	if _, err := s.Create(context.Background(), uuid.New(), CreateRequest{}); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestCreateRejectsInvalidRecurrencePattern(t *testing.T) {
	s := NewService(nil, nil)
	bad := "every-leap-year"
	_, err := s.Create(context.Background(), uuid.New(), CreateRequest{Title: "x", RecurrencePattern: &bad})
	if err == nil {
		t.Fatal("expected error for invalid recurrence pattern")
	}
}

func TestSnapshotCopiesAllFields(t *testing.T) {
	due := time.Now().UTC()
	desc := "details"
	task := &Task{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		Title:       "pay invoice",
		Description: &desc,
		Completed:   true,
		DueDate:     &due,
	}

	snap := snapshot(task)
	if snap.ID != task.ID || snap.UserID != task.OwnerID || snap.Title != task.Title {
		t.Fatalf("snapshot() lost identity fields: %+v", snap)
	}
	if snap.Description == nil || *snap.Description != desc {
		t.Fatalf("snapshot() lost description: %+v", snap)
	}
	if !snap.Completed {
		t.Fatal("snapshot() lost completed flag")
	}
	if snap.DueDate == nil || !snap.DueDate.Equal(due) {
		t.Fatalf("snapshot() lost due date: %+v", snap)
	}
}

func TestStrPtrEqual(t *testing.T) {
	a, b := "x", "x"
	c := "y"
	cases := []struct {
		a, b *string
		want bool
	}{
		{nil, nil, true},
		{&a, nil, false},
		{nil, &b, false},
		{&a, &b, true},
		{&a, &c, false},
	}
	for _, tc := range cases {
		if got := strPtrEqual(tc.a, tc.b); got != tc.want {
			t.Errorf("strPtrEqual(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTimePtrEqual(t *testing.T) {
	now := time.Now().UTC()
	sameInstant := now.In(time.FixedZone("other", 3600))
	later := now.Add(time.Hour)

	if !timePtrEqual(&now, &sameInstant) {
		t.Error("expected equal instants in different zones to compare equal")
	}
	if timePtrEqual(&now, &later) {
		t.Error("expected different instants to compare unequal")
	}
	if !timePtrEqual(nil, nil) {
		t.Error("expected nil, nil to compare equal")
	}
	if timePtrEqual(&now, nil) {
		t.Error("expected non-nil vs nil to compare unequal")
	}
}
