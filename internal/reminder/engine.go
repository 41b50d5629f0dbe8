package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/event"
	"github.com/taskflow/coordination/internal/publisher"
	"github.com/taskflow/coordination/internal/recurrence"
)

// Engine owns the reminder heap and its two background ticks: firing
// (spec §4.3 default 10s) and persistence (default 5min).
type Engine struct {
	heap            *Heap
	repo            *Repository
	pub             publisher.Publisher
	logger          *slog.Logger
	firingInterval  time.Duration
	persistInterval time.Duration
}

// NewEngine constructs an Engine. Call Reload to load persisted state and
// Run to drive the background ticks; cancel Run's context to stop them.
func NewEngine(repo *Repository, pub publisher.Publisher, logger *slog.Logger, firingInterval, persistInterval time.Duration) *Engine {
	return &Engine{
		heap:            NewHeap(),
		repo:            repo,
		pub:             pub,
		logger:          logger,
		firingInterval:  firingInterval,
		persistInterval: persistInterval,
	}
}

// Reload loads future-trigger rows into the heap and cancels past-due rows,
// per the Open Question 1 resolution in SPEC_FULL.md §4.3.
func (e *Engine) Reload(ctx context.Context) error {
	now := time.Now().UTC()

	cancelled, err := e.repo.MarkPastDueCancelled(ctx, now)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		e.logger.Warn("reminder: cancelled past-due rows found on startup, not firing", "count", cancelled)
	}

	entries, err := e.repo.LoadFuture(ctx, now)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		e.heap.Insert(entry)
	}
	e.logger.Info("reminder: reloaded pending reminders", "count", len(entries))
	return nil
}

// Run launches the firing and persistence ticks, blocking until ctx is
// cancelled.
func (e *Engine) Run(ctx context.Context) error {
	firingTicker := time.NewTicker(e.firingInterval)
	defer firingTicker.Stop()
	persistTicker := time.NewTicker(e.persistInterval)
	defer persistTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.persist(context.Background())
			return nil
		case <-firingTicker.C:
			e.fireDue(ctx)
		case <-persistTicker.C:
			e.persist(ctx)
		}
	}
}

// fireDue pops and publishes every entry whose trigger time has passed,
// per spec §4.3's firing loop. An entry whose publish fails is dropped and
// not retried, so each such failure loses that reminder.
func (e *Engine) fireDue(ctx context.Context) {
	now := time.Now().UTC()
	for {
		entry := e.heap.PopIfDue(now)
		if entry == nil {
			return
		}

		payload := event.ReminderTriggeredPayload{
			ReminderKind: entry.ReminderKind,
			TaskTitle:    entry.TaskTitle,
			DueDate:      entry.DueDate,
		}
		err := e.pub.Publish(ctx, event.TopicTasksReminderTriggered, event.TypeReminderTriggered, entry.TaskID, entry.OwnerID, payload, nil)
		if err != nil {
			e.logger.Error("reminder: publish failed, dropping fired reminder", "task_id", entry.TaskID, "error", err)
			continue
		}
		if err := e.repo.MarkTriggered(ctx, entry.ID, now); err != nil {
			e.logger.Error("reminder: mark triggered failed", "task_id", entry.TaskID, "error", err)
		}
	}
}

func (e *Engine) persist(ctx context.Context) {
	entries := e.heap.Snapshot()
	if err := e.repo.SnapshotPending(ctx, entries); err != nil {
		e.logger.Error("reminder: persist snapshot failed", "error", err)
	}
}

// HandleTaskCreated schedules a reminder if due-at and reminder-offset are
// both present and the computed trigger is in the future, per spec §4.3.
func (e *Engine) HandleTaskCreated(task event.TaskSnapshot) {
	e.scheduleFromTask(task)
}

// HandleTaskUpdated removes any existing entry for the task, then
// reschedules from the denormalized post-update snapshot if due_date or
// reminder_offset changed (Open Question 2 resolution: the publisher
// denormalizes the full task into the event so no Task API call is needed
// here).
func (e *Engine) HandleTaskUpdated(task event.TaskSnapshot, changes map[string]event.FieldChange) {
	_, dueChanged := changes["due_date"]
	_, offsetChanged := changes["reminder_offset"]
	if !dueChanged && !offsetChanged {
		return
	}
	e.heap.RemoveByTaskID(task.ID)
	e.scheduleFromTask(task)
}

// HandleTaskCompleted removes any pending reminder for the task.
func (e *Engine) HandleTaskCompleted(taskID uuid.UUID) {
	e.heap.RemoveByTaskID(taskID)
}

// HandleTaskDeleted removes any pending reminder for the task.
func (e *Engine) HandleTaskDeleted(taskID uuid.UUID) {
	e.heap.RemoveByTaskID(taskID)
}

func (e *Engine) scheduleFromTask(task event.TaskSnapshot) {
	if task.DueDate == nil || task.ReminderOffset == nil {
		return
	}
	offset, ok := recurrence.ParseOffset(*task.ReminderOffset)
	if !ok {
		e.logger.Warn("reminder: unparseable offset, not scheduling", "task_id", task.ID, "offset", *task.ReminderOffset)
		return
	}

	trigger := task.DueDate.Add(-offset)
	if !trigger.After(time.Now().UTC()) {
		return
	}

	e.heap.Insert(&Entry{
		ID:           uuid.New(),
		TaskID:       task.ID,
		OwnerID:      task.UserID,
		TriggerAt:    trigger,
		ReminderKind: "due_date_reminder",
		TaskTitle:    task.Title,
		DueDate:      task.DueDate,
		Status:       StatusPending,
		UpdatedAt:    time.Now().UTC(),
	})
}
