package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/event"
	"github.com/taskflow/coordination/internal/publisher"
	"github.com/taskflow/coordination/internal/recurrence"
)

// Service implements Task CRUD and is the sole producer of task lifecycle
// events (spec §3: "each mutation emits exactly one event").
type Service struct {
	repo *Repository
	pub  publisher.Publisher
}

// NewService builds a Service over repo, publishing through pub.
func NewService(repo *Repository, pub publisher.Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// Create validates and inserts a new task, then publishes task.created.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (*Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("task: title is required")
	}
	if req.RecurrencePattern != nil {
		if ok, msg := recurrence.Validate(*req.RecurrencePattern); !ok {
			return nil, fmt.Errorf("task: %s", msg)
		}
	}

	t := &Task{
		OwnerID:               ownerID,
		Title:                 req.Title,
		Description:           req.Description,
		DueDate:               req.DueDate,
		RecurrencePattern:     req.RecurrencePattern,
		RecurrenceEndDate:     req.RecurrenceEndDate,
		ReminderOffset:        req.ReminderOffset,
		ParentRecurringTaskID: req.ParentRecurringTaskID,
		OccurrenceDate:        req.OccurrenceDate,
	}
	if req.DueDate != nil && req.ReminderOffset != nil {
		t.ReminderStatus = ReminderStatusPending
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}

	s.publish(ctx, event.TopicTasksCreated, event.TypeTaskCreated, t, event.CreatedPayload{Task: snapshot(t)})
	return t, nil
}

// GetByID fetches a task by id. No ownership check is made here or by the
// HTTP handler.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.GetByID(ctx, id)
}

// ListForOwner returns ownerID's tasks.
func (s *Service) ListForOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Task, error) {
	return s.repo.ListForOwner(ctx, ownerID, limit, offset)
}

// Update applies req's present fields, computes the changed-field diff,
// and publishes task.updated with the full post-update snapshot
// denormalized alongside Changes (Open Question 2, SPEC_FULL §4.3).
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RecurrencePattern != nil {
		if ok, msg := recurrence.Validate(*req.RecurrencePattern); !ok {
			return nil, fmt.Errorf("task: %s", msg)
		}
	}

	changes := map[string]event.FieldChange{}

	if req.Title != nil && *req.Title != t.Title {
		changes["title"] = event.FieldChange{Old: t.Title, New: *req.Title}
		t.Title = *req.Title
	}
	if req.Description != nil && !strPtrEqual(req.Description, t.Description) {
		changes["description"] = event.FieldChange{Old: t.Description, New: *req.Description}
		t.Description = req.Description
	}
	if req.DueDate != nil && !timePtrEqual(req.DueDate, t.DueDate) {
		changes["due_date"] = event.FieldChange{Old: t.DueDate, New: *req.DueDate}
		t.DueDate = req.DueDate
	}
	if req.RecurrencePattern != nil && !strPtrEqual(req.RecurrencePattern, t.RecurrencePattern) {
		changes["recurrence_pattern"] = event.FieldChange{Old: t.RecurrencePattern, New: *req.RecurrencePattern}
		t.RecurrencePattern = req.RecurrencePattern
	}
	if req.RecurrenceEndDate != nil && !timePtrEqual(req.RecurrenceEndDate, t.RecurrenceEndDate) {
		changes["recurrence_end_date"] = event.FieldChange{Old: t.RecurrenceEndDate, New: *req.RecurrenceEndDate}
		t.RecurrenceEndDate = req.RecurrenceEndDate
	}
	if req.ReminderOffset != nil && !strPtrEqual(req.ReminderOffset, t.ReminderOffset) {
		changes["reminder_offset"] = event.FieldChange{Old: t.ReminderOffset, New: *req.ReminderOffset}
		t.ReminderOffset = req.ReminderOffset
	}

	if len(changes) == 0 {
		return t, nil
	}

	if t.DueDate != nil && t.ReminderOffset != nil {
		t.ReminderStatus = ReminderStatusPending
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("task: update: %w", err)
	}

	s.publish(ctx, event.TopicTasksUpdated, event.TypeTaskUpdated, t, event.UpdatedPayload{Task: snapshot(t), Changes: changes})
	return t, nil
}

// Complete marks a task completed and publishes task.completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Task, error) {
	completedAt, err := s.repo.Complete(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.TopicTasksCompleted, event.TypeTaskCompleted, t, event.CompletedPayload{CompletedAt: completedAt})
	return t, nil
}

// Delete removes a task and publishes task.deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("task: delete: %w", err)
	}

	s.publish(ctx, event.TopicTasksDeleted, event.TypeTaskDeleted, t, event.DeletedPayload{})
	return nil
}

// publish wraps Publisher.Publish with the logged-and-continue policy of
// spec §4.1: a publish failure never fails the HTTP request, since the
// store write has already committed.
func (s *Service) publish(ctx context.Context, topic string, eventType event.Type, t *Task, payload any) {
	_ = s.pub.Publish(ctx, topic, eventType, t.ID, t.OwnerID, payload, nil)
}

func snapshot(t *Task) event.TaskSnapshot {
	return event.TaskSnapshot{
		ID:                    t.ID,
		UserID:                t.OwnerID,
		Title:                 t.Title,
		Description:           t.Description,
		Completed:             t.Completed,
		DueDate:               t.DueDate,
		RecurrencePattern:     t.RecurrencePattern,
		RecurrenceEndDate:     t.RecurrenceEndDate,
		ReminderOffset:        t.ReminderOffset,
		ParentRecurringTaskID: t.ParentRecurringTaskID,
		OccurrenceDate:        t.OccurrenceDate,
	}
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
