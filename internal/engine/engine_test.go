package engine

import (
	"errors"
	"strconv"
	"testing"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/event"
	"github.com/dshills/treestorm/internal/notation"
)

func values(e *Engine) []bst.Value {
	return e.Traverse(bst.InOrder)
}

func valuesEqual(a, b []bst.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// identity flattens a tree into (value, id) pairs in order, for exact
// comparisons across undo/redo and snapshot restores.
func identity(t bst.Tree) [][2]int64 {
	var out [][2]int64
	t.Walk(bst.InOrder, func(n *bst.Node) bool {
		out = append(out, [2]int64{int64(n.Value), int64(n.ID)})
		return true
	})
	return out
}

func identityEqual(a, b [][2]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInsertDeleteEdit(t *testing.T) {
	e := New()

	if !e.Insert(5) || !e.Insert(3) || !e.Insert(8) {
		t.Fatal("fresh inserts should report a change")
	}
	if e.Insert(5) {
		t.Error("duplicate insert should be a no-op")
	}
	if !valuesEqual(values(e), []bst.Value{3, 5, 8}) {
		t.Errorf("values = %v, want [3 5 8]", values(e))
	}

	if !e.Delete(3) {
		t.Error("delete of present value should report a change")
	}
	if e.Delete(99) {
		t.Error("delete of missing value should be a no-op")
	}

	id, ok := e.FindValue(8)
	if !ok {
		t.Fatal("FindValue(8) missed")
	}
	if !e.EditValue(id, 9) {
		t.Error("edit of known id should report a change")
	}
	if e.EditValue(id, 9) {
		t.Error("edit to the current value should be a no-op")
	}
	if e.EditValue(bst.NodeID(1<<40), 1) {
		t.Error("edit of unknown id should be a no-op")
	}
	if !valuesEqual(values(e), []bst.Value{5, 9}) {
		t.Errorf("values = %v, want [5 9]", values(e))
	}
}

func TestRevisionOnlyBumpsOnChange(t *testing.T) {
	e := New()

	e.Insert(1)
	if e.Revision() != 1 {
		t.Fatalf("revision = %d, want 1", e.Revision())
	}
	e.Insert(1) // no-op
	e.Delete(2) // no-op
	if e.Revision() != 1 {
		t.Errorf("revision after no-ops = %d, want 1", e.Revision())
	}
	e.Delete(1)
	if e.Revision() != 2 {
		t.Errorf("revision = %d, want 2", e.Revision())
	}
}

func TestMutationsPreserveHeldTrees(t *testing.T) {
	e := New()
	e.Insert(5)
	e.Insert(3)

	held := e.Tree()
	wantIdentity := identity(held)

	e.Insert(8)
	e.Delete(3)
	e.Clear()

	if !identityEqual(identity(held), wantIdentity) {
		t.Error("tree held before mutations changed underneath the caller")
	}
	if held.Size() != 2 {
		t.Errorf("held size = %d, want 2", held.Size())
	}
}

func TestUndoRedo(t *testing.T) {
	e := New()
	e.Insert(5)
	e.Insert(3)
	afterTwo := identity(e.Tree())

	e.Insert(8)

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !identityEqual(identity(e.Tree()), afterTwo) {
		t.Error("undo did not restore the exact prior tree")
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if !valuesEqual(values(e), []bst.Value{3, 5, 8}) {
		t.Errorf("values after redo = %v, want [3 5 8]", values(e))
	}

	// A new mutation invalidates the redo stack.
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	e.Insert(7)
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo after new edit error = %v, want ErrNothingToRedo", err)
	}
}

func TestUndoEmptyStack(t *testing.T) {
	e := New()
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo error = %v, want ErrNothingToUndo", err)
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo error = %v, want ErrNothingToRedo", err)
	}
}

func TestClearIsUndoable(t *testing.T) {
	e := New()
	e.Insert(5)
	e.Insert(3)
	before := identity(e.Tree())

	if !e.Clear() {
		t.Fatal("clear of populated tree should report a change")
	}
	if e.Size() != 0 {
		t.Fatalf("size after clear = %d, want 0", e.Size())
	}
	if e.Clear() {
		t.Error("clear of empty tree should be a no-op")
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !identityEqual(identity(e.Tree()), before) {
		t.Error("undo of clear did not restore the exact tree")
	}
}

func TestParseNotationReplacesTree(t *testing.T) {
	e := New()
	e.Insert(1)

	text := "value: 10\nleft:\n  value: 5\nright:\n  value: 15"
	if err := e.ParseNotation(text); err != nil {
		t.Fatalf("ParseNotation: %v", err)
	}
	if !valuesEqual(values(e), []bst.Value{5, 10, 15}) {
		t.Errorf("values = %v, want [5 10 15]", values(e))
	}

	// Loading is undoable back to the pre-parse tree.
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !valuesEqual(values(e), []bst.Value{1}) {
		t.Errorf("values after undo = %v, want [1]", values(e))
	}
}

func TestParseNotationFailureLeavesStateUntouched(t *testing.T) {
	e := New()
	e.Insert(5)
	rev := e.Revision()
	undo := e.UndoCount()
	before := identity(e.Tree())

	err := e.ParseNotation("value: 5\n   value: 9")
	if err == nil {
		t.Fatal("ParseNotation should fail on bad indentation")
	}
	var pe *notation.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *notation.ParseError", err)
	}

	if e.Revision() != rev {
		t.Errorf("revision = %d, want %d", e.Revision(), rev)
	}
	if e.UndoCount() != undo {
		t.Errorf("undo count = %d, want %d", e.UndoCount(), undo)
	}
	if !identityEqual(identity(e.Tree()), before) {
		t.Error("failed parse changed the tree")
	}
}

func TestNotationRoundTrip(t *testing.T) {
	e := New()
	for _, v := range []bst.Value{10, 5, 15} {
		e.Insert(v)
	}

	text := e.Notation()
	e2 := New()
	if err := e2.ParseNotation(text); err != nil {
		t.Fatalf("ParseNotation: %v", err)
	}
	if !valuesEqual(values(e2), values(e)) {
		t.Errorf("round trip values = %v, want %v", values(e2), values(e))
	}
}

func TestNewFromNotation(t *testing.T) {
	e, err := NewFromNotation("value: 2\nright:\n  value: 4")
	if err != nil {
		t.Fatalf("NewFromNotation: %v", err)
	}
	if !valuesEqual(values(e), []bst.Value{2, 4}) {
		t.Errorf("values = %v, want [2 4]", values(e))
	}
	if e.Revision() != 0 {
		t.Errorf("revision after initial load = %d, want 0", e.Revision())
	}
	if e.UndoCount() != 0 {
		t.Errorf("undo count after initial load = %d, want 0", e.UndoCount())
	}

	if _, err := NewFromNotation("nonsense"); err == nil {
		t.Error("NewFromNotation should reject malformed text")
	}
}

func TestRepairNotationIsStateless(t *testing.T) {
	e := New()
	e.Insert(1)
	rev := e.Revision()

	repaired := e.RepairNotation("value: 10\nleft:\n    value: 5")
	if e.Revision() != rev {
		t.Errorf("repair bumped revision to %d, want %d", e.Revision(), rev)
	}

	if err := e.ParseNotation(repaired); err != nil {
		t.Fatalf("repaired text failed to parse: %v", err)
	}
	if !valuesEqual(values(e), []bst.Value{5, 10}) {
		t.Errorf("values = %v, want [5 10]", values(e))
	}
}

func TestUndoGroupCoalesces(t *testing.T) {
	e := New()
	e.Insert(1)

	if err := e.BeginUndoGroup("batch"); err != nil {
		t.Fatalf("BeginUndoGroup: %v", err)
	}
	e.Insert(2)
	e.Insert(3)
	e.Delete(1)
	if err := e.EndUndoGroup(); err != nil {
		t.Fatalf("EndUndoGroup: %v", err)
	}

	if e.UndoCount() != 2 {
		t.Fatalf("undo count = %d, want 2 (insert + group)", e.UndoCount())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !valuesEqual(values(e), []bst.Value{1}) {
		t.Errorf("values after one undo = %v, want [1]", values(e))
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	e := New()
	e.Insert(5)
	e.Insert(3)
	want := identity(e.Tree())

	snap := e.Snapshot("two")
	if snap.ID == 0 {
		t.Fatal("snapshot id should be nonzero")
	}

	e.Insert(8)
	e.Delete(3)

	if err := e.RestoreSnapshot("two"); err != nil {
		t.Fatalf("RestoreSnapshot by name: %v", err)
	}
	if !identityEqual(identity(e.Tree()), want) {
		t.Error("restore by name did not recover the exact tree, ids included")
	}

	e.Insert(42)
	if err := e.RestoreSnapshot(strconv.FormatUint(uint64(snap.ID), 10)); err != nil {
		t.Fatalf("RestoreSnapshot by id: %v", err)
	}
	if !identityEqual(identity(e.Tree()), want) {
		t.Error("restore by id did not recover the exact tree")
	}

	// Restore is undoable.
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !e.Contains(42) {
		t.Error("undo of restore should bring back the pre-restore tree")
	}

	if err := e.RestoreSnapshot("nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("restore of unknown ref error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestSnapshotListAndDelete(t *testing.T) {
	e := New()
	e.Insert(1)
	e.Snapshot("a")
	e.Snapshot("b")

	if got := len(e.Snapshots()); got != 2 {
		t.Fatalf("snapshot count = %d, want 2", got)
	}
	if err := e.DeleteSnapshot("a"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if got := len(e.Snapshots()); got != 1 {
		t.Errorf("snapshot count after delete = %d, want 1", got)
	}
	if err := e.DeleteSnapshot("a"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("double delete error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestChangesRecorded(t *testing.T) {
	e := New()
	e.Insert(5)
	e.Insert(3)
	e.Insert(5) // no-op, must not be recorded
	e.Delete(3)

	changes := e.Changes(0)
	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3", len(changes))
	}
	// Most recent first, revisions strictly descending.
	for i := 1; i < len(changes); i++ {
		if changes[i].Revision >= changes[i-1].Revision {
			t.Errorf("revisions not descending: %d then %d", changes[i-1].Revision, changes[i].Revision)
		}
	}
}

func TestStats(t *testing.T) {
	e := New()
	e.Insert(5)
	e.Insert(3)
	e.Insert(8)
	e.Snapshot("s")
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	s := e.Stats()
	if s.Size != 2 {
		t.Errorf("Size = %d, want 2", s.Size)
	}
	if s.Height != 2 {
		t.Errorf("Height = %d, want 2", s.Height)
	}
	if s.Revision != 4 {
		t.Errorf("Revision = %d, want 4", s.Revision)
	}
	if s.UndoDepth != 2 || s.RedoDepth != 1 {
		t.Errorf("stacks = %d/%d, want 2/1", s.UndoDepth, s.RedoDepth)
	}
	if s.Snapshots != 1 {
		t.Errorf("Snapshots = %d, want 1", s.Snapshots)
	}
	if s.Changes != 4 {
		t.Errorf("Changes = %d, want 4", s.Changes)
	}
}

func TestEventsPublished(t *testing.T) {
	e := New()
	var got []event.Event
	topics := []event.Topic{
		event.TopicTreeChanged,
		event.TopicTreeCleared,
		event.TopicNotationParsed,
		event.TopicNotationParseFailed,
		event.TopicHistoryUndone,
		event.TopicSnapshotCreated,
		event.TopicSnapshotRestored,
	}
	for _, topic := range topics {
		if _, err := e.Bus().Subscribe(topic, func(ev event.Event) { got = append(got, ev) }); err != nil {
			t.Fatalf("Subscribe(%s): %v", topic, err)
		}
	}

	e.Insert(5)
	e.Insert(5) // no-op, no event
	snap := e.Snapshot("s")
	e.Clear()
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := e.RestoreSnapshot("s"); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if err := e.ParseNotation("value: 1"); err != nil {
		t.Fatalf("ParseNotation: %v", err)
	}
	_ = e.ParseNotation("???")

	wantTopics := []event.Topic{
		event.TopicTreeChanged,
		event.TopicSnapshotCreated,
		event.TopicTreeCleared,
		event.TopicHistoryUndone,
		event.TopicSnapshotRestored,
		event.TopicNotationParsed,
		event.TopicNotationParseFailed,
	}
	if len(got) != len(wantTopics) {
		t.Fatalf("events = %d, want %d", len(got), len(wantTopics))
	}
	for i, ev := range got {
		if ev.Topic != wantTopics[i] {
			t.Errorf("event[%d].Topic = %s, want %s", i, ev.Topic, wantTopics[i])
		}
	}

	first, ok := got[0].Payload.(event.TreeChanged)
	if !ok {
		t.Fatalf("insert payload type = %T, want TreeChanged", got[0].Payload)
	}
	if first.Op != "insert" || first.Value != 5 || first.Size != 1 {
		t.Errorf("insert payload = %+v", first)
	}
	if got[0].Meta.Revision != 1 {
		t.Errorf("insert revision = %d, want 1", got[0].Meta.Revision)
	}

	snapNote, ok := got[1].Payload.(event.SnapshotNote)
	if !ok || snapNote.ID != uint64(snap.ID) || snapNote.Name != "s" {
		t.Errorf("snapshot payload = %+v (type ok=%v)", got[1].Payload, ok)
	}

	failed, ok := got[6].Payload.(event.ParseFailed)
	if !ok {
		t.Fatalf("parse failure payload type = %T, want ParseFailed", got[6].Payload)
	}
	if failed.Line != 1 || failed.Message == "" {
		t.Errorf("parse failure payload = %+v", failed)
	}
}

func TestEventSubscriberMayCallBack(t *testing.T) {
	e := New()
	var sizes []int
	if _, err := e.Bus().Subscribe(event.TopicTreeChanged, func(event.Event) {
		sizes = append(sizes, e.Size())
	}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	e.Insert(5)
	e.Insert(3)

	if len(sizes) != 2 || sizes[0] != 1 || sizes[1] != 2 {
		t.Errorf("sizes observed by subscriber = %v, want [1 2]", sizes)
	}
}

func TestWithMaxUndoEntries(t *testing.T) {
	e := New(WithMaxUndoEntries(2))
	for i := 1; i <= 4; i++ {
		e.Insert(bst.Value(i))
	}
	if e.UndoCount() != 2 {
		t.Errorf("undo count = %d, want 2", e.UndoCount())
	}
}

func TestWithChangeLogSize(t *testing.T) {
	e := New(WithChangeLogSize(2))
	for i := 1; i <= 4; i++ {
		e.Insert(bst.Value(i))
	}
	if got := len(e.Changes(0)); got != 2 {
		t.Errorf("retained changes = %d, want 2", got)
	}
}
