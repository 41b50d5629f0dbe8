package reminder

import (
	"net/http"

	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/event"
)

// Routes returns the broker.Route set the Reminder Engine subscribes to,
// mounted at /dapr/subscribe/* by cmd/reminderengine.
func Routes(engine *Engine, pubsubName string) []broker.Route {
	handle := func(r *http.Request, env event.Envelope) error {
		switch env.EventType {
		case event.TypeTaskCreated:
			var p event.CreatedPayload
			if err := env.DecodePayload(&p); err != nil {
				return nil
			}
			engine.HandleTaskCreated(p.Task)
		case event.TypeTaskUpdated:
			var p event.UpdatedPayload
			if err := env.DecodePayload(&p); err != nil {
				return nil
			}
			engine.HandleTaskUpdated(p.Task, p.Changes)
		case event.TypeTaskCompleted:
			engine.HandleTaskCompleted(env.TaskID)
		case event.TypeTaskDeleted:
			engine.HandleTaskDeleted(env.TaskID)
		}
		return nil
	}

	return []broker.Route{
		{Name: "reminder-created", PubsubName: pubsubName, Topic: event.TopicTasksCreated, Handler: handle},
		{Name: "reminder-updated", PubsubName: pubsubName, Topic: event.TopicTasksUpdated, Handler: handle},
		{Name: "reminder-completed", PubsubName: pubsubName, Topic: event.TopicTasksCompleted, Handler: handle},
		{Name: "reminder-deleted", PubsubName: pubsubName, Topic: event.TopicTasksDeleted, Handler: handle},
	}
}
