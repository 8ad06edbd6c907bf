package engine

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/engine/history"
	"github.com/dshills/treestorm/internal/engine/tracking"
	"github.com/dshills/treestorm/internal/event"
	"github.com/dshills/treestorm/internal/notation"
	"github.com/dshills/treestorm/internal/protocol"
)

// eventSource tags events published by this package.
const eventSource = "engine"

// Stats is a point-in-time summary of engine state.
type Stats struct {
	Size      int
	Height    int
	Revision  uint64
	UndoDepth int
	RedoDepth int
	Changes   int
	Snapshots int
}

// Engine owns a tree and its orbit: history, change log, snapshots,
// and the event bus. See the package documentation for the contract.
type Engine struct {
	mu        sync.RWMutex
	tree      bst.Tree
	revision  uint64
	history   *history.History
	tracker   *tracking.Tracker
	snapshots *tracking.SnapshotManager
	bus       *event.Bus
	log       zerolog.Logger

	maxUndoEntries int
	changeLogSize  int
}

// ============================================================================
// Construction
// ============================================================================

// New creates an engine holding an empty tree.
func New(opts ...Option) *Engine {
	e := &Engine{
		tree: bst.New(),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus(event.WithLogger(e.log))
	}
	e.history = history.New(e.maxUndoEntries)
	e.tracker = tracking.NewTracker(tracking.WithMaxChanges(e.changeLogSize))
	e.snapshots = tracking.NewSnapshotManager()
	return e
}

// NewFromNotation creates an engine whose initial tree is parsed from
// notation text. The initial load consumes no revision and is not
// undoable.
func NewFromNotation(text string, opts ...Option) (*Engine, error) {
	tree, err := notation.Parse(text)
	if err != nil {
		return nil, err
	}
	e := New(opts...)
	e.tree = tree
	return e, nil
}

// Bus returns the engine's event bus for subscription.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// ============================================================================
// Write Operations
// ============================================================================

// Insert adds v to the tree and reports whether the tree changed.
// Inserting a value that is already present is a no-op.
func (e *Engine) Insert(v bst.Value) bool {
	e.mu.Lock()
	ev, changed := e.insertLocked(v)
	e.mu.Unlock()

	if changed {
		e.bus.Publish(ev)
	}
	return changed
}

// insertLocked performs the insert without acquiring the lock.
func (e *Engine) insertLocked(v bst.Value) (event.Event, bool) {
	if e.tree.Contains(v) {
		return event.Event{}, false
	}
	next := e.tree.Insert(v)
	node := next.Find(v)
	e.applyLocked(next, tracking.Change{Op: tracking.OpInsert, Value: v, NodeID: node.ID},
		fmt.Sprintf("insert %d", v))
	return e.treeEventLocked(event.TopicTreeChanged, "insert", v, node.ID), true
}

// Delete removes v from the tree and reports whether the tree changed.
// Deleting a missing value is a no-op.
func (e *Engine) Delete(v bst.Value) bool {
	e.mu.Lock()
	ev, changed := e.deleteLocked(v)
	e.mu.Unlock()

	if changed {
		e.bus.Publish(ev)
	}
	return changed
}

// deleteLocked performs the delete without acquiring the lock.
func (e *Engine) deleteLocked(v bst.Value) (event.Event, bool) {
	target := e.tree.Find(v)
	if target == nil {
		return event.Event{}, false
	}
	next := e.tree.Delete(v)
	e.applyLocked(next, tracking.Change{Op: tracking.OpDelete, Value: v, NodeID: target.ID},
		fmt.Sprintf("delete %d", v))
	return e.treeEventLocked(event.TopicTreeChanged, "delete", v, target.ID), true
}

// EditValue rewrites the value of the node carrying id and reports
// whether the tree changed. Unknown ids and edits to the node's current
// value are no-ops. The edit does not re-balance: it can leave the tree
// order-violated until later inserts or deletes rebuild around it.
func (e *Engine) EditValue(id bst.NodeID, v bst.Value) bool {
	e.mu.Lock()
	ev, changed := e.editValueLocked(id, v)
	e.mu.Unlock()

	if changed {
		e.bus.Publish(ev)
	}
	return changed
}

// editValueLocked performs the edit without acquiring the lock.
func (e *Engine) editValueLocked(id bst.NodeID, v bst.Value) (event.Event, bool) {
	target := e.tree.FindID(id)
	if target == nil || target.Value == v {
		return event.Event{}, false
	}
	next := e.tree.EditValue(id, v)
	e.applyLocked(next, tracking.Change{Op: tracking.OpEdit, Value: v, NodeID: id},
		fmt.Sprintf("edit node %d to %d", id, v))
	return e.treeEventLocked(event.TopicTreeChanged, "edit", v, id), true
}

// Clear empties the tree and reports whether the tree changed. Clearing
// an empty tree is a no-op. Clear is undoable.
func (e *Engine) Clear() bool {
	e.mu.Lock()
	ev, changed := e.clearLocked()
	e.mu.Unlock()

	if changed {
		e.bus.Publish(ev)
	}
	return changed
}

// clearLocked performs the clear without acquiring the lock.
func (e *Engine) clearLocked() (event.Event, bool) {
	if e.tree.IsEmpty() {
		return event.Event{}, false
	}
	e.applyLocked(bst.New(), tracking.Change{Op: tracking.OpClear}, "clear")
	return e.treeEventLocked(event.TopicTreeCleared, "clear", 0, 0), true
}

// ParseNotation replaces the current tree with one parsed from text.
// On failure the returned error is a *notation.ParseError and the
// engine's tree, revision, and history are untouched. A successful
// parse is undoable.
func (e *Engine) ParseNotation(text string) error {
	e.mu.Lock()
	ev, err := e.parseNotationLocked(text)
	e.mu.Unlock()

	e.bus.Publish(ev)
	return err
}

// parseNotationLocked performs the parse without acquiring the lock.
// It always returns an event: parsed on success, parse_failed on error.
func (e *Engine) parseNotationLocked(text string) (event.Event, error) {
	tree, err := notation.Parse(text)
	if err != nil {
		payload := event.ParseFailed{}
		var pe *notation.ParseError
		if errors.As(err, &pe) {
			payload = event.ParseFailed{
				Line:     pe.Line,
				Category: pe.Category.String(),
				Message:  pe.Message,
			}
		}
		e.log.Debug().Err(err).Msg("notation parse failed")
		return event.New(event.TopicNotationParseFailed, payload, eventSource).
			WithRevision(e.revision), err
	}
	e.applyLocked(tree, tracking.Change{Op: tracking.OpParse}, "parse notation")
	return e.treeEventLocked(event.TopicNotationParsed, "parse", 0, 0), nil
}

// applyLocked installs next as the current tree and records the
// mutation in history and the change log. Caller holds the write lock.
func (e *Engine) applyLocked(next bst.Tree, c tracking.Change, description string) {
	before := e.tree
	e.tree = next
	e.revision++
	c.Revision = e.revision
	e.history.Push(before, next, description)
	e.tracker.Record(c)
	e.log.Debug().
		Str("op", c.Op.String()).
		Uint64("revision", e.revision).
		Int("size", next.Size()).
		Msg("tree mutated")
}

// treeEventLocked builds a mutation event against the current tree.
// Caller holds at least the read lock.
func (e *Engine) treeEventLocked(topic event.Topic, op string, v bst.Value, id bst.NodeID) event.Event {
	return event.New(topic, event.TreeChanged{
		Op:     op,
		Value:  v,
		NodeID: id,
		Size:   e.tree.Size(),
	}, eventSource).WithRevision(e.revision)
}

// ============================================================================
// Notation
// ============================================================================

// Notation serializes the current tree to notation text.
func (e *Engine) Notation() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return notation.Marshal(e.tree)
}

// RepairNotation normalizes the indentation of text. The result is a
// suggestion and must be re-parsed; repair never fails and touches no
// engine state.
func (e *Engine) RepairNotation(text string) string {
	return notation.Repair(text)
}

// TreeJSON renders the current tree as a JSON document.
func (e *Engine) TreeJSON() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return protocol.MarshalTree(e.tree)
}

// ============================================================================
// Read Operations
// ============================================================================

// Tree returns the current tree. The returned tree is immutable and
// stays valid across later engine mutations.
func (e *Engine) Tree() bst.Tree {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree
}

// Size returns the number of nodes in the current tree.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Size()
}

// Height returns the height of the current tree.
func (e *Engine) Height() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Height()
}

// Contains reports whether v is present in the current tree.
func (e *Engine) Contains(v bst.Value) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Contains(v)
}

// FindValue returns the id of the node holding v.
func (e *Engine) FindValue(v bst.Value) (bst.NodeID, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := e.tree.Find(v)
	if n == nil {
		return 0, false
	}
	return n.ID, true
}

// Revision returns the engine's revision counter. Each applied mutation
// increments it by one; no-ops do not.
func (e *Engine) Revision() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.revision
}

// Traverse returns the current tree's values in the given order.
func (e *Engine) Traverse(order bst.Order) []bst.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.Traverse(order)
}

// RangeQuery returns all values in [min, max] in ascending order.
func (e *Engine) RangeQuery(min, max bst.Value) []bst.Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree.RangeQuery(min, max)
}

// Stats returns a point-in-time summary of the engine.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Size:      e.tree.Size(),
		Height:    e.tree.Height(),
		Revision:  e.revision,
		UndoDepth: e.history.UndoCount(),
		RedoDepth: e.history.RedoCount(),
		Changes:   e.tracker.Count(),
		Snapshots: e.snapshots.Count(),
	}
}

// ============================================================================
// History
// ============================================================================

// Undo reverts the most recent mutation. Returns ErrNothingToUndo when
// the undo stack is empty.
func (e *Engine) Undo() error {
	e.mu.Lock()
	ev, err := e.undoLocked()
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.bus.Publish(ev)
	return nil
}

// undoLocked performs the undo without acquiring the lock.
func (e *Engine) undoLocked() (event.Event, error) {
	tree, err := e.history.Undo()
	if err != nil {
		return event.Event{}, err
	}
	e.tree = tree
	e.revision++
	e.tracker.Record(tracking.Change{Op: tracking.OpUndo, Revision: e.revision})
	e.log.Debug().Uint64("revision", e.revision).Int("size", tree.Size()).Msg("undo")
	return e.treeEventLocked(event.TopicHistoryUndone, "undo", 0, 0), nil
}

// Redo reapplies the most recently undone mutation. Returns
// ErrNothingToRedo when the redo stack is empty.
func (e *Engine) Redo() error {
	e.mu.Lock()
	ev, err := e.redoLocked()
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.bus.Publish(ev)
	return nil
}

// redoLocked performs the redo without acquiring the lock.
func (e *Engine) redoLocked() (event.Event, error) {
	tree, err := e.history.Redo()
	if err != nil {
		return event.Event{}, err
	}
	e.tree = tree
	e.revision++
	e.tracker.Record(tracking.Change{Op: tracking.OpRedo, Revision: e.revision})
	e.log.Debug().Uint64("revision", e.revision).Int("size", tree.Size()).Msg("redo")
	return e.treeEventLocked(event.TopicHistoryRedone, "redo", 0, 0), nil
}

// BeginUndoGroup starts coalescing subsequent mutations into a single
// undo entry labelled description.
func (e *Engine) BeginUndoGroup(description string) error {
	return e.history.BeginGroup(description)
}

// EndUndoGroup commits the open undo group.
func (e *Engine) EndUndoGroup() error {
	return e.history.EndGroup()
}

// CancelUndoGroup abandons the open undo group. Mutations made inside
// the group stay applied but become non-undoable.
func (e *Engine) CancelUndoGroup() error {
	return e.history.CancelGroup()
}

// UndoCount reports the undo stack depth.
func (e *Engine) UndoCount() int {
	return e.history.UndoCount()
}

// RedoCount reports the redo stack depth.
func (e *Engine) RedoCount() int {
	return e.history.RedoCount()
}

// UndoInfo describes the undo stack, newest first.
func (e *Engine) UndoInfo() []history.OperationInfo {
	return e.history.UndoInfo()
}

// RedoInfo describes the redo stack, newest first.
func (e *Engine) RedoInfo() []history.OperationInfo {
	return e.history.RedoInfo()
}

// ClearHistory drops undo/redo history and the change log. The current
// tree, revision, and snapshots are untouched.
func (e *Engine) ClearHistory() {
	e.history.Clear()
	e.tracker.Clear()
}

// Changes returns up to n recorded changes, most recent first. n <= 0
// returns every retained change.
func (e *Engine) Changes(n int) []tracking.Change {
	return e.tracker.Latest(n)
}

// ============================================================================
// Snapshots
// ============================================================================

// Snapshot captures the current tree under an optional name. A reused
// name replaces the earlier snapshot.
func (e *Engine) Snapshot(name string) tracking.Snapshot {
	e.mu.RLock()
	snap := e.snapshots.Create(name, e.tree, e.revision)
	e.mu.RUnlock()

	e.bus.Publish(event.New(event.TopicSnapshotCreated,
		event.SnapshotNote{ID: uint64(snap.ID), Name: snap.Name}, eventSource).
		WithRevision(snap.Revision))
	return snap
}

// RestoreSnapshot replaces the current tree with a stored snapshot. The
// reference is a snapshot name or a numeric id; names win when both
// match. Restoring is undoable.
func (e *Engine) RestoreSnapshot(ref string) error {
	e.mu.Lock()
	ev, err := e.restoreSnapshotLocked(ref)
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.bus.Publish(ev)
	return nil
}

// restoreSnapshotLocked performs the restore without acquiring the lock.
func (e *Engine) restoreSnapshotLocked(ref string) (event.Event, error) {
	snap, err := e.resolveSnapshot(ref)
	if err != nil {
		return event.Event{}, err
	}
	before := e.tree
	e.tree = snap.Tree
	e.revision++
	e.history.Push(before, snap.Tree, fmt.Sprintf("restore snapshot %s", ref))
	e.tracker.Record(tracking.Change{Op: tracking.OpRestore, Revision: e.revision})
	e.log.Debug().Uint64("snapshot", uint64(snap.ID)).Uint64("revision", e.revision).Msg("snapshot restored")
	return event.New(event.TopicSnapshotRestored,
		event.SnapshotNote{ID: uint64(snap.ID), Name: snap.Name}, eventSource).
		WithRevision(e.revision), nil
}

// resolveSnapshot looks a snapshot up by name first, then by numeric id.
func (e *Engine) resolveSnapshot(ref string) (tracking.Snapshot, error) {
	if snap, err := e.snapshots.GetByName(ref); err == nil {
		return snap, nil
	}
	id, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return tracking.Snapshot{}, fmt.Errorf("%w: %q", ErrSnapshotNotFound, ref)
	}
	return e.snapshots.Get(tracking.SnapshotID(id))
}

// DeleteSnapshot removes a stored snapshot by name or numeric id.
func (e *Engine) DeleteSnapshot(ref string) error {
	snap, err := e.resolveSnapshot(ref)
	if err != nil {
		return err
	}
	return e.snapshots.Delete(snap.ID)
}

// Snapshots returns all stored snapshots ordered by id.
func (e *Engine) Snapshots() []tracking.Snapshot {
	return e.snapshots.List()
}
