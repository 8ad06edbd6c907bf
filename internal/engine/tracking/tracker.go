package tracking

import (
	"sync"
	"time"

	"github.com/dshills/treestorm/internal/bst"
)

// DefaultMaxChanges bounds the change ring when no option overrides it.
const DefaultMaxChanges = 1000

// Op identifies the kind of mutation a Change records.
type Op uint8

// Mutation kinds recorded by the Tracker.
const (
	OpInsert Op = iota
	OpDelete
	OpEdit
	OpClear
	OpParse
	OpRestore
	OpUndo
	OpRedo
)

// String returns the lowercase name of the operation.
func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpEdit:
		return "edit"
	case OpClear:
		return "clear"
	case OpParse:
		return "parse"
	case OpRestore:
		return "restore"
	case OpUndo:
		return "undo"
	case OpRedo:
		return "redo"
	default:
		return "unknown"
	}
}

// Change is one recorded mutation.
type Change struct {
	Op       Op
	Value    bst.Value
	NodeID   bst.NodeID
	Revision uint64
	Time     time.Time
}

// Tracker keeps a bounded, ordered log of changes. It is a fixed-size
// ring: once maxChanges records have accumulated, each new record
// evicts the oldest.
type Tracker struct {
	mu         sync.RWMutex
	changes    []Change
	head       int
	count      int
	maxChanges int
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithMaxChanges sets the ring capacity. Values below one fall back to
// DefaultMaxChanges.
func WithMaxChanges(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 0 {
			t.maxChanges = n
		}
	}
}

// NewTracker creates a change tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{maxChanges: DefaultMaxChanges}
	for _, opt := range opts {
		opt(t)
	}
	t.changes = make([]Change, t.maxChanges)
	return t
}

// Record appends a change to the ring, evicting the oldest record when
// the ring is full.
func (t *Tracker) Record(c Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c.Time.IsZero() {
		c.Time = time.Now()
	}
	idx := (t.head + t.count) % t.maxChanges
	t.changes[idx] = c
	if t.count < t.maxChanges {
		t.count++
	} else {
		t.head = (t.head + 1) % t.maxChanges
	}
}

// Latest returns up to n changes, most recent first. n <= 0 returns
// every retained change.
func (t *Tracker) Latest(n int) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || n > t.count {
		n = t.count
	}
	out := make([]Change, 0, n)
	for i := 0; i < n; i++ {
		idx := (t.head + t.count - 1 - i + t.maxChanges) % t.maxChanges
		out = append(out, t.changes[idx])
	}
	return out
}

// Since returns all retained changes with Revision > rev, oldest first.
func (t *Tracker) Since(rev uint64) []Change {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Change
	for i := 0; i < t.count; i++ {
		c := t.changes[(t.head+i)%t.maxChanges]
		if c.Revision > rev {
			out = append(out, c)
		}
	}
	return out
}

// Count reports how many changes are currently retained.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// MaxChanges reports the ring capacity.
func (t *Tracker) MaxChanges() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.maxChanges
}

// Clear drops every retained change.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.head = 0
	t.count = 0
}
