package reminder

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entryHeap implements heap.Interface ordered strictly by TriggerAt, per
// spec §3's reminder-entry invariant and §4.3's "min-heap ordered by
// trigger-at" (other fields are deliberately excluded from comparison).
type entryHeap []*Entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*Entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Heap is a mutex-guarded min-heap of reminder entries, serializing
// concurrent access from the dispatch handler and the firing/persistence
// ticks (spec §4.3, §5).
type Heap struct {
	mu sync.Mutex
	h  entryHeap
}

// NewHeap returns an empty Heap.
func NewHeap() *Heap {
	return &Heap{h: entryHeap{}}
}

// Insert adds an entry, maintaining heap order.
func (hp *Heap) Insert(e *Entry) {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	heap.Push(&hp.h, e)
}

// Peek returns the entry with the earliest TriggerAt without removing it,
// or nil if the heap is empty.
func (hp *Heap) Peek() *Entry {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	if len(hp.h) == 0 {
		return nil
	}
	return hp.h[0]
}

// PopIfDue removes and returns the earliest entry if its TriggerAt is
// <= now, otherwise returns nil without modifying the heap.
func (hp *Heap) PopIfDue(now time.Time) *Entry {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	if len(hp.h) == 0 {
		return nil
	}
	if hp.h[0].TriggerAt.After(now) {
		return nil
	}
	return heap.Pop(&hp.h).(*Entry)
}

// RemoveByTaskID removes any entry for taskID via linear scan followed by
// re-heapify, per spec §4.3. Returns true if an entry was removed.
func (hp *Heap) RemoveByTaskID(taskID uuid.UUID) bool {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	for i, e := range hp.h {
		if e.TaskID == taskID {
			n := len(hp.h)
			hp.h[i] = hp.h[n-1]
			hp.h[n-1] = nil
			hp.h = hp.h[:n-1]
			heap.Init(&hp.h)
			return true
		}
	}
	return false
}

// Len returns the number of entries currently held.
func (hp *Heap) Len() int {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	return len(hp.h)
}

// Snapshot returns a copy of every entry currently held, for persistence.
func (hp *Heap) Snapshot() []*Entry {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	out := make([]*Entry, len(hp.h))
	for i, e := range hp.h {
		cp := *e
		out[i] = &cp
	}
	return out
}
