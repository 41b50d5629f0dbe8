package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/api"
)

// queuePullTimeout bounds how long the stream loop blocks on the outbound
// channel before re-checking for client disconnect, per spec §4.4's SSE
// stream lifecycle.
const queuePullTimeout = time.Second

// Authenticator resolves the owner-id for an inbound stream request,
// returning ok=false on auth failure (401).
type Authenticator func(r *http.Request) (ownerID uuid.UUID, ok bool)

// StreamHandler builds the chi handler for GET /api/v1/notifications/stream.
func StreamHandler(registry *Registry, authenticate Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := authenticate(r)
		if !ok {
			api.Unauthorized(w, "invalid or missing token")
			return
		}

		conn, err := registry.Register(ownerID)
		if err != nil {
			api.RateLimited(w, 1)
			return
		}
		defer registry.Unregister(conn)

		flusher, ok := w.(http.Flusher)
		if !ok {
			api.InternalError(w)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case frame, more := <-conn.Outbound():
				if !more {
					return
				}
				if err := writeFrame(w, frame); err != nil {
					return
				}
				flusher.Flush()
			case <-time.After(queuePullTimeout):
				// No event ready; loop back to check for disconnect.
			}
		}
	}
}

func writeFrame(w http.ResponseWriter, frame Frame) error {
	body, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", body)
	return err
}
