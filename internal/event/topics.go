package event

import "github.com/dshills/treestorm/internal/bst"

// Topic is a hierarchical event type name, dot-separated by convention
// (e.g. "tree.changed"). Topics are matched exactly; there is no wildcard
// subscription.
type Topic string

// Topics published by the engine.
const (
	// TopicTreeChanged fires after insert, delete, or edit mutates the tree.
	TopicTreeChanged Topic = "tree.changed"

	// TopicTreeCleared fires after the tree is emptied.
	TopicTreeCleared Topic = "tree.cleared"

	// TopicNotationParsed fires after notation text successfully replaces
	// the tree.
	TopicNotationParsed Topic = "notation.parsed"

	// TopicNotationParseFailed fires when a parse is rejected. The engine's
	// tree is untouched when this topic fires.
	TopicNotationParseFailed Topic = "notation.parse_failed"

	// TopicHistoryUndone and TopicHistoryRedone fire after undo/redo
	// replace the tree.
	TopicHistoryUndone Topic = "history.undone"
	TopicHistoryRedone Topic = "history.redone"

	// TopicSnapshotCreated and TopicSnapshotRestored fire around named
	// snapshot operations.
	TopicSnapshotCreated  Topic = "snapshot.created"
	TopicSnapshotRestored Topic = "snapshot.restored"
)

// TreeChanged is the payload for TopicTreeChanged and TopicTreeCleared.
type TreeChanged struct {
	// Op names the mutating command ("insert", "delete", "edit", "clear",
	// "parse", "restore", "undo", "redo").
	Op string

	// Value is the value involved, when the op concerns one.
	Value bst.Value

	// NodeID is the node involved, when the op addresses one by identity.
	NodeID bst.NodeID

	// Size is the node count after the change.
	Size int
}

// ParseFailed is the payload for TopicNotationParseFailed.
type ParseFailed struct {
	Line     int
	Category string
	Message  string
}

// SnapshotNote is the payload for the snapshot topics.
type SnapshotNote struct {
	ID   uint64
	Name string
}
