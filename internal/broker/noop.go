package broker

import "context"

// noopBackend implements Backend without any network I/O. It is selected
// when BROKER_MODE is anything other than "kafka" (including "dapr") or
// when no broker address is configured, matching
// spec §4.1's requirement that services boot and serve traffic with the
// broker absent.
type noopBackend struct{}

// NewNoopBackend returns a Backend that silently drops every publish.
func NewNoopBackend() Backend { return noopBackend{} }

func (noopBackend) Publish(ctx context.Context, topic string, key []byte, body []byte) error {
	return nil
}

func (noopBackend) Subscribe(ctx context.Context, topic string, handler func(ctx context.Context, body []byte) error) error {
	return nil
}

func (noopBackend) Close() error { return nil }

func (noopBackend) Healthy(ctx context.Context) error { return nil }
