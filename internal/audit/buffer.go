package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// flusher persists a batch of records; implemented by Repository.
type flusher interface {
	InsertBatch(ctx context.Context, records []Record) error
}

// Buffer accumulates audit records in memory and flushes them to storage
// once it reaches a size threshold or a background tick fires, mirroring
// the source ingestor's batch-then-flush lifecycle.
type Buffer struct {
	mu        sync.Mutex
	records   []Record
	batchSize int
	repo      flusher
	logger    *slog.Logger
}

// NewBuffer builds a Buffer with the given batch size.
func NewBuffer(repo flusher, batchSize int, logger *slog.Logger) *Buffer {
	return &Buffer{
		batchSize: batchSize,
		repo:      repo,
		logger:    logger,
	}
}

// Append adds a record to the buffer, flushing immediately if the batch
// size threshold is reached.
func (b *Buffer) Append(ctx context.Context, rec Record) {
	b.mu.Lock()
	b.records = append(b.records, rec)
	full := len(b.records) >= b.batchSize
	b.mu.Unlock()

	if full {
		b.Flush(ctx)
	}
}

// Flush drains the buffer and persists it in one transaction. A write
// failure drops the batch and logs it; events are not re-buffered, since
// the broker's at-least-once delivery and event-id dedup cover the gap.
func (b *Buffer) Flush(ctx context.Context) int {
	b.mu.Lock()
	pending := b.records
	b.records = nil
	b.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}

	if err := b.repo.InsertBatch(ctx, pending); err != nil {
		b.logger.Error("audit flush failed", "count", len(pending), "error", err)
		return 0
	}
	return len(pending)
}

// Run ticks the flush loop until ctx is cancelled, flushing once more on
// the way out so no buffered record is lost on shutdown.
func (b *Buffer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.Flush(context.Background())
			return
		case <-ticker.C:
			b.Flush(ctx)
		}
	}
}
