package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/treestorm/internal/bst"
)

// DefaultMaxEntries bounds the undo stack when no override is given.
const DefaultMaxEntries = 100

// Sentinel errors returned by History operations.
var (
	ErrNothingToUndo = errors.New("history: nothing to undo")
	ErrNothingToRedo = errors.New("history: nothing to redo")
	ErrGroupOpen     = errors.New("history: undo group still open")
	ErrNoOpenGroup   = errors.New("history: no open undo group")
)

// Entry records one undoable mutation: the tree before it, the tree
// after it, and a short description for display.
type Entry struct {
	Before      bst.Tree
	After       bst.Tree
	Description string
	Timestamp   time.Time
}

// OperationInfo describes an entry without exposing the trees.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// History is a bounded pair of undo/redo stacks. Zero value is not
// usable; construct with New. Safe for concurrent use.
type History struct {
	mu         sync.Mutex
	undo       []Entry
	redo       []Entry
	maxEntries int

	grouping  bool
	groupDesc string
	groupSet  bool
	group     Entry
}

// New creates a history retaining at most maxEntries undo entries.
// Values below one fall back to DefaultMaxEntries.
func New(maxEntries int) *History {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Push records a mutation. The redo stack is cleared: once a new
// mutation lands, previously undone futures are unreachable. When the
// undo stack is full the oldest entry is dropped.
//
// Inside an open group the push folds into the pending group entry
// instead: the group keeps the before-tree of its first push and the
// after-tree of its latest.
func (h *History) Push(before, after bst.Tree, description string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if !h.groupSet {
			h.group = Entry{
				Before:      before,
				Description: h.groupDesc,
				Timestamp:   time.Now(),
			}
			h.groupSet = true
		}
		h.group.After = after
		return
	}

	h.pushLocked(Entry{
		Before:      before,
		After:       after,
		Description: description,
		Timestamp:   time.Now(),
	})
}

func (h *History) pushLocked(e Entry) {
	h.undo = append(h.undo, e)
	if len(h.undo) > h.maxEntries {
		h.undo = h.undo[1:]
	}
	h.redo = h.redo[:0]
}

// Undo pops the newest entry and returns its before-tree. The entry
// moves to the redo stack.
func (h *History) Undo() (bst.Tree, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return bst.Tree{}, ErrGroupOpen
	}
	if len(h.undo) == 0 {
		return bst.Tree{}, ErrNothingToUndo
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return e.Before, nil
}

// Redo pops the newest undone entry and returns its after-tree. The
// entry moves back to the undo stack.
func (h *History) Redo() (bst.Tree, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return bst.Tree{}, ErrGroupOpen
	}
	if len(h.redo) == 0 {
		return bst.Tree{}, ErrNothingToRedo
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return e.After, nil
}

// BeginGroup starts coalescing subsequent pushes into one entry
// labelled description. Nested calls are not supported; a second
// BeginGroup before EndGroup returns ErrGroupOpen.
func (h *History) BeginGroup(description string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return ErrGroupOpen
	}
	h.grouping = true
	h.groupDesc = description
	h.groupSet = false
	return nil
}

// EndGroup closes the open group and commits it as a single entry.
// A group that saw no pushes commits nothing.
func (h *History) EndGroup() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return ErrNoOpenGroup
	}
	h.grouping = false
	if h.groupSet {
		h.pushLocked(h.group)
		h.groupSet = false
	}
	return nil
}

// CancelGroup closes the open group and discards its pending entry.
// The caller is responsible for restoring any state the grouped
// mutations changed.
func (h *History) CancelGroup() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return ErrNoOpenGroup
	}
	h.grouping = false
	h.groupSet = false
	return nil
}

// Grouping reports whether a group is currently open.
func (h *History) Grouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// UndoCount reports how many entries can be undone.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// RedoCount reports how many entries can be redone.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// UndoInfo describes the undo stack, newest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infoLocked(h.undo)
}

// RedoInfo describes the redo stack, newest first.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infoLocked(h.redo)
}

func infoLocked(entries []Entry) []OperationInfo {
	out := make([]OperationInfo, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, OperationInfo{
			Description: entries[i].Description,
			Timestamp:   entries[i].Timestamp,
		})
	}
	return out
}

// MaxEntries reports the undo stack capacity.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// SetMaxEntries changes the capacity, trimming the oldest undo entries
// when the new capacity is smaller. Values below one are ignored.
func (h *History) SetMaxEntries(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n < 1 {
		return
	}
	h.maxEntries = n
	if len(h.undo) > n {
		h.undo = h.undo[len(h.undo)-n:]
	}
}

// Clear drops both stacks and any open group.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
	h.grouping = false
	h.groupSet = false
}
