package audit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/api"
	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/event"
)

// QueryHandler serves GET /api/v1/audit/tasks/{task-id}.
func QueryHandler(repo *Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := uuid.Parse(chi.URLParam(r, "task-id"))
		if err != nil {
			api.BadRequest(w, "invalid task id")
			return
		}

		limit := 100
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		records, err := repo.GetTaskHistory(r.Context(), taskID, limit)
		switch {
		case errors.Is(err, ErrNotFound):
			api.NotFound(w, "no audit history for task")
		case err != nil:
			api.InternalError(w)
		default:
			api.JSONResponse(w, http.StatusOK, records)
		}
	}
}

// Routes returns the broker.Route set the ingestor subscribes to: all
// four task topics, each appended to the flush buffer.
func Routes(buf *Buffer, pubsubName string) []broker.Route {
	handle := func(r *http.Request, env event.Envelope) error {
		buf.Append(r.Context(), FromEnvelope(env))
		return nil
	}

	topics := []struct {
		name  string
		topic string
	}{
		{"audit-created", event.TopicTasksCreated},
		{"audit-updated", event.TopicTasksUpdated},
		{"audit-completed", event.TopicTasksCompleted},
		{"audit-deleted", event.TopicTasksDeleted},
	}

	routes := make([]broker.Route, 0, len(topics))
	for _, t := range topics {
		routes = append(routes, broker.Route{Name: t.name, PubsubName: pubsubName, Topic: t.topic, Handler: handle})
	}
	return routes
}
