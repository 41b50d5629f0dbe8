// Package broker implements the Dapr-sidecar-shaped subscription endpoints
// (spec §6: /dapr/subscribe) and publishes directly through a real Kafka
// client, with a no-op fallback when no broker is configured. No request
// is ever made to a sidecar's /v1.0/publish endpoint.
package broker

import (
	"context"
	"errors"
)

// ErrUnreachable is returned by Backend.Publish when the broker cannot be
// reached. Callers must treat this as logged-and-continue, never fatal.
var ErrUnreachable = errors.New("broker: unreachable")

// Backend is the low-level transport a Publisher and a subscriber loop are
// built on. Producers never see this interface directly — only
// internal/publisher does.
type Backend interface {
	// Publish delivers body on topic. Returns ErrUnreachable (wrapped) on
	// any network/broker failure; never panics.
	Publish(ctx context.Context, topic string, key []byte, body []byte) error
	// Subscribe starts a background consumer for topic, invoking handler
	// for every message until ctx is cancelled. Only used in direct-Kafka
	// (no sidecar) development mode; under a real Dapr sidecar, delivery
	// instead arrives via the HTTP routes in dapr.go.
	Subscribe(ctx context.Context, topic string, handler func(ctx context.Context, body []byte) error) error
	Close() error
	// Healthy reports whether the backend can currently reach the broker.
	Healthy(ctx context.Context) error
}

// Subscription describes one entry of the /dapr/subscribe response.
type Subscription struct {
	PubsubName string `json:"pubsubname"`
	Topic      string `json:"topic"`
	Route      string `json:"route"`
}
