package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/event"
)

// EventHandler processes one delivered envelope. Returning an error causes
// the dispatch route to answer 500 so the broker retries (spec §7
// "transient downstream"), unless the error wraps ErrPermanent, in which
// case the event is logged, acked and dropped. Returning nil acks it.
type EventHandler func(r *http.Request, env event.Envelope) error

// Route is one subscribed topic bound to a handler, keyed by the route name
// that appears in the /dapr/subscribe response and in the dispatch path.
type Route struct {
	Name       string
	PubsubName string
	Topic      string
	Handler    EventHandler
}

// Subscriber mounts the Dapr pub/sub programming model (spec §6) onto a chi
// router: GET /dapr/subscribe advertises routes, POST /dapr/subscribe/{name}
// dispatches to the matching handler.
type Subscriber struct {
	routes map[string]Route
	logger *slog.Logger
}

// NewSubscriber builds a Subscriber from a fixed set of routes.
func NewSubscriber(logger *slog.Logger, routes ...Route) *Subscriber {
	s := &Subscriber{routes: make(map[string]Route, len(routes)), logger: logger}
	for _, rt := range routes {
		s.routes[rt.Name] = rt
	}
	return s
}

// Mount registers the subscribe-advertisement and dispatch endpoints.
func (s *Subscriber) Mount(r chi.Router) {
	r.Get("/dapr/subscribe", s.advertise)
	r.Post("/dapr/subscribe/{name}", s.dispatch)
}

func (s *Subscriber) advertise(w http.ResponseWriter, r *http.Request) {
	subs := make([]Subscription, 0, len(s.routes))
	for name, rt := range s.routes {
		subs = append(subs, Subscription{
			PubsubName: rt.PubsubName,
			Topic:      rt.Topic,
			Route:      "/dapr/subscribe/" + name,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(subs)
}

func (s *Subscriber) dispatch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rt, ok := s.routes[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Warn("dapr dispatch: read body failed", "route", name, "error", err)
		writeAck(w, true)
		return
	}

	var env event.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.logger.Warn("dapr dispatch: malformed envelope, dropping", "route", name, "error", err)
		writeAck(w, true)
		return
	}
	if isZeroEnvelope(env) {
		s.logger.Warn("dapr dispatch: missing required fields, dropping", "route", name)
		writeAck(w, true)
		return
	}

	if err := rt.Handler(r, env); err != nil {
		if errors.Is(err, ErrPermanent) {
			s.logger.Error("dapr dispatch: permanent failure, dropping", "route", name, "event_id", env.EventID, "error", err)
			writeAck(w, true)
			return
		}
		s.logger.Error("dapr dispatch: transient failure, requesting redelivery", "route", name, "event_id", env.EventID, "error", err)
		http.Error(w, "retry", http.StatusInternalServerError)
		return
	}

	writeAck(w, true)
}

// RunDirect subscribes every mounted route straight to backend, simulating
// the Dapr sidecar's dispatch in-process for BROKER_MODE=kafka (no sidecar
// present, SPEC_FULL §4.1). Each route's topic gets its own background
// reader via backend.Subscribe; delivered messages are decoded and run
// through the same handler the HTTP dispatch path uses. Under a real Dapr
// sidecar (BROKER_MODE=dapr) this is never called — delivery arrives only
// over /dapr/subscribe/{name} instead.
func (s *Subscriber) RunDirect(ctx context.Context, backend Backend) error {
	for name, rt := range s.routes {
		name, rt := name, rt
		err := backend.Subscribe(ctx, rt.Topic, func(ctx context.Context, body []byte) error {
			var env event.Envelope
			if err := json.Unmarshal(body, &env); err != nil {
				s.logger.Warn("direct subscribe: malformed envelope, dropping", "route", name, "error", err)
				return nil
			}
			if isZeroEnvelope(env) {
				s.logger.Warn("direct subscribe: missing required fields, dropping", "route", name)
				return nil
			}
			if err := rt.Handler((&http.Request{}).WithContext(ctx), env); err != nil {
				s.logger.Error("direct subscribe: handler failed", "route", name, "event_id", env.EventID, "error", err)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("broker: subscribe %s: %w", rt.Topic, err)
		}
	}
	return nil
}

// ErrPermanent marks a handler failure as non-retryable (spec §7 "permanent
// downstream"): the event is acked and dropped rather than redelivered.
var ErrPermanent = errors.New("broker: permanent failure")

func isZeroEnvelope(env event.Envelope) bool {
	return env.EventType == "" || env.TaskID == uuid.Nil || env.EventID == uuid.Nil
}

func writeAck(w http.ResponseWriter, success bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": success})
}
