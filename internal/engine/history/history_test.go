package history

import (
	"errors"
	"testing"

	"github.com/dshills/treestorm/internal/bst"
)

func TestUndoRedoRoundTrip(t *testing.T) {
	h := New(10)
	empty := bst.New()
	one := empty.Insert(5)
	two := one.Insert(3)

	h.Push(empty, one, "insert 5")
	h.Push(one, two, "insert 3")

	if h.UndoCount() != 2 {
		t.Fatalf("undo count = %d, want 2", h.UndoCount())
	}

	tree, err := h.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tree.Size() != 1 {
		t.Errorf("undo returned size %d, want 1", tree.Size())
	}
	if h.RedoCount() != 1 {
		t.Errorf("redo count = %d, want 1", h.RedoCount())
	}

	tree, err = h.Redo()
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if tree.Size() != 2 {
		t.Errorf("redo returned size %d, want 2", tree.Size())
	}
	if h.UndoCount() != 2 || h.RedoCount() != 0 {
		t.Errorf("stacks = %d/%d, want 2/0", h.UndoCount(), h.RedoCount())
	}
}

func TestUndoEmpty(t *testing.T) {
	h := New(10)
	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo on empty error = %v, want ErrNothingToUndo", err)
	}
	if _, err := h.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo on empty error = %v, want ErrNothingToRedo", err)
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := New(10)
	empty := bst.New()
	one := empty.Insert(1)
	two := one.Insert(2)

	h.Push(empty, one, "insert 1")
	h.Push(one, two, "insert 2")
	if _, err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if h.RedoCount() != 1 {
		t.Fatalf("redo count = %d, want 1", h.RedoCount())
	}

	h.Push(one, one.Insert(9), "insert 9")
	if h.RedoCount() != 0 {
		t.Errorf("redo count after push = %d, want 0", h.RedoCount())
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	h := New(2)
	prev := bst.New()
	for i := 1; i <= 3; i++ {
		next := prev.Insert(bst.Value(i))
		h.Push(prev, next, "insert")
		prev = next
	}

	if h.UndoCount() != 2 {
		t.Fatalf("undo count = %d, want 2", h.UndoCount())
	}
	// Undo twice: the deepest reachable state is after the first insert,
	// because the first entry was evicted.
	if _, err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	tree, err := h.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tree.Size() != 1 {
		t.Errorf("deepest undo size = %d, want 1", tree.Size())
	}
	if _, err := h.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo past capacity error = %v, want ErrNothingToUndo", err)
	}
}

func TestGroupCoalesces(t *testing.T) {
	h := New(10)
	empty := bst.New()
	one := empty.Insert(1)
	two := one.Insert(2)
	three := two.Insert(3)

	if err := h.BeginGroup("batch"); err != nil {
		t.Fatalf("BeginGroup: %v", err)
	}
	h.Push(empty, one, "insert 1")
	h.Push(one, two, "insert 2")
	h.Push(two, three, "insert 3")
	if err := h.EndGroup(); err != nil {
		t.Fatalf("EndGroup: %v", err)
	}

	if h.UndoCount() != 1 {
		t.Fatalf("undo count = %d, want 1 coalesced entry", h.UndoCount())
	}
	info := h.UndoInfo()
	if info[0].Description != "batch" {
		t.Errorf("description = %q, want %q", info[0].Description, "batch")
	}

	tree, err := h.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !tree.IsEmpty() {
		t.Errorf("undo of group returned size %d, want empty", tree.Size())
	}

	tree, err = h.Redo()
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if tree.Size() != 3 {
		t.Errorf("redo of group returned size %d, want 3", tree.Size())
	}
}

func TestGroupErrors(t *testing.T) {
	h := New(10)

	if err := h.EndGroup(); !errors.Is(err, ErrNoOpenGroup) {
		t.Errorf("EndGroup without group error = %v, want ErrNoOpenGroup", err)
	}
	if err := h.CancelGroup(); !errors.Is(err, ErrNoOpenGroup) {
		t.Errorf("CancelGroup without group error = %v, want ErrNoOpenGroup", err)
	}

	if err := h.BeginGroup("outer"); err != nil {
		t.Fatalf("BeginGroup: %v", err)
	}
	if err := h.BeginGroup("inner"); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("nested BeginGroup error = %v, want ErrGroupOpen", err)
	}
	if _, err := h.Undo(); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("Undo during group error = %v, want ErrGroupOpen", err)
	}
	if _, err := h.Redo(); !errors.Is(err, ErrGroupOpen) {
		t.Errorf("Redo during group error = %v, want ErrGroupOpen", err)
	}
	if !h.Grouping() {
		t.Error("Grouping() = false during open group")
	}
	if err := h.EndGroup(); err != nil {
		t.Fatalf("EndGroup: %v", err)
	}
	if h.UndoCount() != 0 {
		t.Errorf("empty group committed %d entries, want 0", h.UndoCount())
	}
}

func TestCancelGroupDiscards(t *testing.T) {
	h := New(10)
	empty := bst.New()

	if err := h.BeginGroup("doomed"); err != nil {
		t.Fatalf("BeginGroup: %v", err)
	}
	h.Push(empty, empty.Insert(1), "insert 1")
	if err := h.CancelGroup(); err != nil {
		t.Fatalf("CancelGroup: %v", err)
	}

	if h.UndoCount() != 0 {
		t.Errorf("undo count after cancel = %d, want 0", h.UndoCount())
	}
	if h.Grouping() {
		t.Error("Grouping() = true after cancel")
	}
}

func TestUndoInfoOrder(t *testing.T) {
	h := New(10)
	empty := bst.New()
	one := empty.Insert(1)

	h.Push(empty, one, "first")
	h.Push(one, one.Insert(2), "second")

	info := h.UndoInfo()
	if len(info) != 2 {
		t.Fatalf("len(info) = %d, want 2", len(info))
	}
	if info[0].Description != "second" || info[1].Description != "first" {
		t.Errorf("info order = %q, %q, want newest first", info[0].Description, info[1].Description)
	}
	if info[0].Timestamp.IsZero() {
		t.Error("entry timestamp is zero")
	}
}

func TestSetMaxEntriesTrims(t *testing.T) {
	h := New(5)
	prev := bst.New()
	for i := 1; i <= 4; i++ {
		next := prev.Insert(bst.Value(i))
		h.Push(prev, next, "insert")
		prev = next
	}

	h.SetMaxEntries(2)
	if h.UndoCount() != 2 {
		t.Fatalf("undo count after shrink = %d, want 2", h.UndoCount())
	}
	// The kept entries must be the newest two.
	tree, err := h.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tree.Size() != 3 {
		t.Errorf("first undo size = %d, want 3", tree.Size())
	}

	h.SetMaxEntries(0)
	if h.MaxEntries() != 2 {
		t.Errorf("MaxEntries after ignored set = %d, want 2", h.MaxEntries())
	}
}

func TestClear(t *testing.T) {
	h := New(10)
	empty := bst.New()
	h.Push(empty, empty.Insert(1), "insert")
	if _, err := h.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	h.Clear()
	if h.UndoCount() != 0 || h.RedoCount() != 0 {
		t.Errorf("stacks after clear = %d/%d, want 0/0", h.UndoCount(), h.RedoCount())
	}
}
