package notifier

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestRegistry(maxPerOwner, rateLimit int) *Registry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(maxPerOwner, rateLimit, time.Second, nil, logger)
}

func TestRegisterEnforcesCap(t *testing.T) {
	r := newTestRegistry(3, 10)
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := r.Register(owner); err != nil {
			t.Fatalf("Register #%d: %v", i, err)
		}
	}

	if _, err := r.Register(owner); err != ErrTooManyConnections {
		t.Fatalf("4th Register error = %v, want ErrTooManyConnections", err)
	}
}

func TestUnregisterIsIdempotentAndFreesSlot(t *testing.T) {
	r := newTestRegistry(1, 10)
	owner := uuid.New()

	conn, err := r.Register(owner)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	r.Unregister(conn)
	r.Unregister(conn) // idempotent

	if _, err := r.Register(owner); err != nil {
		t.Fatalf("Register after unregister: %v", err)
	}
}

func TestDeliverEnforcesRollingRateLimit(t *testing.T) {
	r := newTestRegistry(1, 10)
	owner := uuid.New()
	if _, err := r.Register(owner); err != nil {
		t.Fatalf("Register: %v", err)
	}

	delivered := 0
	for i := 0; i < 20; i++ {
		delivered += r.Deliver(owner, Frame{Type: "notification"})
	}

	if delivered != 10 {
		t.Fatalf("delivered = %d, want 10 (rate limit cap)", delivered)
	}
}

func TestEvictStaleRemovesOldConnections(t *testing.T) {
	r := newTestRegistry(3, 10)
	owner := uuid.New()
	conn, _ := r.Register(owner)
	conn.lastHeartbeatAt = time.Now().UTC().Add(-2 * time.Minute)

	r.EvictStale(90 * time.Second)

	if r.CountForOwner(owner) != 0 {
		t.Fatalf("CountForOwner = %d, want 0 after eviction", r.CountForOwner(owner))
	}
}
