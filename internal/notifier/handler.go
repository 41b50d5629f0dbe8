package notifier

import (
	"net/http"

	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/event"
)

// Routes returns the broker.Route set the Notifier subscribes to: all five
// task topics, each mapped to a notification frame and delivered to the
// owning user's live connections (spec §4.4 "Event mapping").
func Routes(registry *Registry, pubsubName string) []broker.Route {
	handle := func(r *http.Request, env event.Envelope) error {
		registry.Deliver(env.UserID, ToFrame(env))
		return nil
	}

	topics := []struct {
		name  string
		topic string
	}{
		{"notifier-created", event.TopicTasksCreated},
		{"notifier-updated", event.TopicTasksUpdated},
		{"notifier-completed", event.TopicTasksCompleted},
		{"notifier-deleted", event.TopicTasksDeleted},
		{"notifier-reminder-triggered", event.TopicTasksReminderTriggered},
	}

	routes := make([]broker.Route, 0, len(topics))
	for _, t := range topics {
		routes = append(routes, broker.Route{Name: t.name, PubsubName: pubsubName, Topic: t.topic, Handler: handle})
	}
	return routes
}
