// Package notifier implements the SSE fan-out (spec §4.4): a per-owner
// connection registry with bounded queues, rolling-window rate limiting,
// heartbeat and stale eviction.
package notifier

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Frame is one SSE payload, either a notification envelope or a heartbeat.
type Frame struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const outboundQueueSize = 64

// Connection is one live SSE stream. Grounded on internal/websocket/client.go's
// bounded-channel-with-drop pattern, generalized from a duplex WS client to
// a one-directional SSE sender.
type Connection struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	ConnectedAt   time.Time
	outbound      chan Frame
	closed        chan struct{}
	closeOnce     sync.Once

	mu               sync.Mutex
	lastHeartbeatAt  time.Time
	sendTimestamps   []time.Time // rolling window, bounded to last rateLimit entries
}

func newConnection(ownerID uuid.UUID) *Connection {
	now := time.Now().UTC()
	return &Connection{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		ConnectedAt:     now,
		outbound:        make(chan Frame, outboundQueueSize),
		closed:          make(chan struct{}),
		lastHeartbeatAt: now,
	}
}

// Outbound exposes the connection's receive-only event channel for the SSE
// stream handler's read loop.
func (c *Connection) Outbound() <-chan Frame {
	return c.outbound
}

// Close marks the connection closed; safe to call multiple times.
func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Connection) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// canSend purges timestamps older than window from the rolling deque, then
// reports whether a new send is allowed (fewer than limit within window).
// Grounded verbatim on sse_handler.py's can_send_message.
func (c *Connection) canSend(window time.Duration, limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	cutoff := now.Add(-window)

	kept := c.sendTimestamps[:0]
	for _, ts := range c.sendTimestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	c.sendTimestamps = kept

	return len(c.sendTimestamps) < limit
}

func (c *Connection) recordSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendTimestamps = append(c.sendTimestamps, time.Now().UTC())
}

func (c *Connection) updateHeartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastHeartbeatAt = time.Now().UTC()
}

func (c *Connection) isStale(threshold time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastHeartbeatAt) > threshold
}

// enqueue attempts a non-blocking send; returns false if the outbound queue
// is full (caller should drop and unregister, matching hub.go's
// full-channel handling).
func (c *Connection) enqueue(f Frame) bool {
	select {
	case c.outbound <- f:
		return true
	default:
		return false
	}
}
