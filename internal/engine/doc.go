// Package engine hosts a binary search tree behind a thread-safe facade.
//
// The engine owns one current tree plus everything that orbits it:
// bounded undo/redo history, a change log, named snapshots, and an
// event bus that announces mutations. Because the underlying tree is
// immutable, history entries and snapshots are root pointers, never
// copies, and any tree handed out by the engine stays valid forever.
//
// Mutating operations report whether the tree changed. Structural
// no-ops (inserting a present value, deleting a missing one, editing an
// unknown id) return false without consuming a revision, a history
// entry, or an event.
//
// All methods are safe for concurrent use. Events are published after
// the engine's lock is released, so subscribers may call back into the
// engine.
package engine
