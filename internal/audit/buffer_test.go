package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/coordination/internal/event"
)

type fakeFlusher struct {
	mu      sync.Mutex
	batches [][]Record
	err     error
}

func (f *fakeFlusher) InsertBatch(ctx context.Context, records []Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := append([]Record(nil), records...)
	f.batches = append(f.batches, cp)
	return nil
}

func newRecord() Record {
	return FromEnvelope(event.Envelope{
		EventType: event.TypeTaskCreated,
		EventID:   uuid.New(),
		TaskID:    uuid.New(),
		UserID:    uuid.New(),
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(`{}`),
	})
}

func TestBufferFlushesAtBatchSize(t *testing.T) {
	repo := &fakeFlusher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	buf := NewBuffer(repo, 3, logger)

	for i := 0; i < 3; i++ {
		buf.Append(context.Background(), newRecord())
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.batches) != 1 || len(repo.batches[0]) != 3 {
		t.Fatalf("expected one batch of 3, got %v", repo.batches)
	}
}

func TestBufferFlushDropsOnWriteFailure(t *testing.T) {
	repo := &fakeFlusher{err: errors.New("db unreachable")}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	buf := NewBuffer(repo, 100, logger)

	buf.Append(context.Background(), newRecord())
	n := buf.Flush(context.Background())

	if n != 0 {
		t.Fatalf("Flush() = %d, want 0 on write failure", n)
	}

	// Buffer drains even on failure; a second flush has nothing to send.
	repo.err = nil
	if n := buf.Flush(context.Background()); n != 0 {
		t.Fatalf("second Flush() = %d, want 0 (record not re-buffered)", n)
	}
}

func TestBufferRunFlushesOnShutdown(t *testing.T) {
	repo := &fakeFlusher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	buf := NewBuffer(repo, 100, logger)
	buf.Append(context.Background(), newRecord())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		buf.Run(ctx, time.Hour)
		close(done)
	}()

	cancel()
	<-done

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.batches) != 1 {
		t.Fatalf("expected shutdown flush to persist buffered record, got %v", repo.batches)
	}
}
