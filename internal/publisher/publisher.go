// Package publisher is the sole path by which producers put events on the
// bus (spec §4.1). Other packages use internal/broker only to build the
// backend and to declare subscription routes, never to publish.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/broker"
	"github.com/taskflow/coordination/internal/event"
)

// Publisher is the only producer-facing API. Publish never panics and
// never blocks the caller beyond its own internal deadline; a broker
// failure is reported as an error but must not be treated as fatal by the
// caller (the write that triggered the event has already been committed).
type Publisher interface {
	Publish(ctx context.Context, topic string, eventType event.Type, taskID, ownerID uuid.UUID, payload any, correlationID *uuid.UUID) error
}

// brokerPublisher is the real implementation, backed by a broker.Backend.
type brokerPublisher struct {
	backend broker.Backend
	logger  *slog.Logger
}

// New builds a Publisher over backend. Pass broker.NewNoopBackend() for the
// graceful-degradation mode described in spec §4.1.
func New(backend broker.Backend, logger *slog.Logger) Publisher {
	return &brokerPublisher{backend: backend, logger: logger}
}

func (p *brokerPublisher) Publish(ctx context.Context, topic string, eventType event.Type, taskID, ownerID uuid.UUID, payload any, correlationID *uuid.UUID) error {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publisher: marshal payload: %w", err)
	}

	env := event.Envelope{
		EventType:     eventType,
		EventID:       uuid.New(),
		Timestamp:     time.Now().UTC(),
		TaskID:        taskID,
		UserID:        ownerID,
		CorrelationID: correlationID,
		Payload:       rawPayload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("publisher: marshal envelope: %w", err)
	}

	if err := p.backend.Publish(ctx, topic, []byte(taskID.String()), body); err != nil {
		p.logger.Error("publish failed, continuing", "topic", topic, "event_type", eventType, "event_id", env.EventID, "error", err)
		return err
	}
	return nil
}

// NewNoop returns a Publisher that always succeeds without delivering
// anything, mirroring original_source's _MockPublisher fallback used when
// the Dapr SDK is unavailable at startup.
func NewNoop() Publisher {
	return noopPublisher{}
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, topic string, eventType event.Type, taskID, ownerID uuid.UUID, payload any, correlationID *uuid.UUID) error {
	return nil
}
