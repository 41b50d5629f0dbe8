package notifier

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTooManyConnections is returned by Register when an owner already has
// MaxPerOwner live connections (spec §3, §4.4).
var ErrTooManyConnections = errors.New("notifier: too many connections for owner")

// Registry is the owner-id -> set-of-connections map, grounded on
// internal/websocket/hub.go's clients map, generalized from tenant-keyed
// WS clients to owner-keyed SSE connections.
type Registry struct {
	mu              sync.RWMutex
	connections     map[uuid.UUID]map[uuid.UUID]*Connection
	maxPerOwner     int
	rateLimit       int
	rateLimitWindow time.Duration
	logger          *slog.Logger

	ledger ConnectionLedger
}

// ConnectionLedger tracks live-connection counts across Notifier replicas
// (spec §5 allows multiple replicas; a single process's map cannot enforce
// the per-owner cap across the fleet by itself).
type ConnectionLedger interface {
	Increment(ownerID uuid.UUID) (int64, error)
	Decrement(ownerID uuid.UUID) error
}

// NewRegistry constructs a Registry. ledger may be nil, in which case the
// cap is enforced locally only (single-replica deployments, or tests).
func NewRegistry(maxPerOwner, rateLimit int, rateLimitWindow time.Duration, ledger ConnectionLedger, logger *slog.Logger) *Registry {
	return &Registry{
		connections:     make(map[uuid.UUID]map[uuid.UUID]*Connection),
		maxPerOwner:     maxPerOwner,
		rateLimit:       rateLimit,
		rateLimitWindow: rateLimitWindow,
		ledger:          ledger,
		logger:          logger,
	}
}

// Register creates a new connection for ownerID, failing with
// ErrTooManyConnections when the owner already has maxPerOwner live
// connections.
func (r *Registry) Register(ownerID uuid.UUID) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.connections[ownerID]
	if len(existing) >= r.maxPerOwner {
		return nil, ErrTooManyConnections
	}

	if r.ledger != nil {
		count, err := r.ledger.Increment(ownerID)
		if err != nil {
			r.logger.Warn("notifier: connection ledger unavailable, enforcing cap locally only", "owner_id", ownerID, "error", err)
		} else if int(count) > r.maxPerOwner {
			_ = r.ledger.Decrement(ownerID)
			return nil, ErrTooManyConnections
		}
	}

	conn := newConnection(ownerID)
	if existing == nil {
		existing = make(map[uuid.UUID]*Connection)
		r.connections[ownerID] = existing
	}
	existing[conn.ID] = conn
	return conn, nil
}

// Unregister removes conn; idempotent.
func (r *Registry) Unregister(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owned, ok := r.connections[conn.OwnerID]
	if !ok {
		return
	}
	if _, present := owned[conn.ID]; !present {
		return
	}
	delete(owned, conn.ID)
	if len(owned) == 0 {
		delete(r.connections, conn.OwnerID)
	}
	conn.Close()

	if r.ledger != nil {
		if err := r.ledger.Decrement(conn.OwnerID); err != nil {
			r.logger.Warn("notifier: connection ledger decrement failed", "owner_id", conn.OwnerID, "error", err)
		}
	}
}

// Deliver enqueues f on every live connection for ownerID, skipping
// connections whose rolling rate-limit window is exhausted. Returns the
// number of connections the event was actually delivered to.
func (r *Registry) Deliver(ownerID uuid.UUID, f Frame) int {
	r.mu.RLock()
	owned := r.connections[ownerID]
	conns := make([]*Connection, 0, len(owned))
	for _, c := range owned {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	delivered := 0
	var fullConns []*Connection
	for _, c := range conns {
		if !c.canSend(r.rateLimitWindow, r.rateLimit) {
			r.logger.Info("notifier: rate limit drop", "owner_id", ownerID, "connection_id", c.ID)
			continue
		}
		if c.enqueue(f) {
			c.recordSend()
			delivered++
		} else {
			r.logger.Warn("notifier: outbound queue full, dropping connection", "owner_id", ownerID, "connection_id", c.ID)
			fullConns = append(fullConns, c)
		}
	}
	for _, c := range fullConns {
		r.Unregister(c)
	}
	return delivered
}

// Heartbeat enqueues a heartbeat frame on every live connection.
func (r *Registry) Heartbeat() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	frame := Frame{Type: "heartbeat", Timestamp: time.Now().UTC()}
	for _, owned := range r.connections {
		for _, c := range owned {
			if c.enqueue(frame) {
				c.updateHeartbeat()
			}
		}
	}
}

// EvictStale unregisters every connection whose last heartbeat is older
// than threshold.
func (r *Registry) EvictStale(threshold time.Duration) {
	r.mu.RLock()
	var stale []*Connection
	for _, owned := range r.connections {
		for _, c := range owned {
			if c.isStale(threshold) {
				stale = append(stale, c)
			}
		}
	}
	r.mu.RUnlock()

	for _, c := range stale {
		r.logger.Info("notifier: evicting stale connection", "owner_id", c.OwnerID, "connection_id", c.ID)
		r.Unregister(c)
	}
}

// CountForOwner reports how many live local connections an owner holds.
func (r *Registry) CountForOwner(ownerID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[ownerID])
}
