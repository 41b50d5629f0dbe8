package notifier

import (
	"fmt"

	"github.com/taskflow/coordination/internal/event"
)

// messageFor derives the human-readable data.message for a notification
// frame, per spec §4.4 ("Task completed!", "Reminder: '<title>' is due
// soon!").
func messageFor(env event.Envelope) (string, map[string]any) {
	switch env.EventType {
	case event.TypeTaskCreated:
		var p event.CreatedPayload
		_ = env.DecodePayload(&p)
		return fmt.Sprintf("New task created: %q", p.Task.Title), map[string]any{"task": p.Task}
	case event.TypeTaskUpdated:
		var p event.UpdatedPayload
		_ = env.DecodePayload(&p)
		return "Task updated", map[string]any{"task": p.Task, "changes": p.Changes}
	case event.TypeTaskCompleted:
		var p event.CompletedPayload
		_ = env.DecodePayload(&p)
		return "Task completed!", map[string]any{"completed_at": p.CompletedAt}
	case event.TypeTaskDeleted:
		return "Task deleted", nil
	case event.TypeReminderTriggered:
		var p event.ReminderTriggeredPayload
		_ = env.DecodePayload(&p)
		return fmt.Sprintf("Reminder: '%s' is due soon!", p.TaskTitle), map[string]any{
			"reminder_kind": p.ReminderKind,
			"due_date":      p.DueDate,
		}
	default:
		return "", nil
	}
}

// ToFrame builds the notification envelope described in spec §4.4.
func ToFrame(env event.Envelope) Frame {
	message, data := messageFor(env)
	if data == nil {
		data = map[string]any{}
	}
	data["message"] = message

	return Frame{
		Type:      "notification",
		Event:     string(env.EventType),
		TaskID:    env.TaskID.String(),
		OwnerID:   env.UserID.String(),
		Data:      data,
		Timestamp: env.Timestamp,
	}
}
