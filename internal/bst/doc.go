// Package bst provides an immutable binary search tree keyed by signed
// integer values, with stable node identity across structural edits.
//
// The tree is a small value type wrapping an optional root node. Structural
// operations (Insert, Delete, EditValue, Clone) never modify the receiver;
// each returns a wholly new tree, so any previously held tree remains a
// valid, independently observable snapshot. Copy-on-write happens at
// whole-tree granularity rather than by sharing subtrees between versions.
//
// Every node carries an identifier issued by NewNodeID that stays with the
// logical node for its whole life: it survives Clone, it is never reused for
// a different node, and it is how callers address a node regardless of its
// current value. Delete's two-child case replaces a position's value with
// its in-order successor's value while the position keeps its id, so an id
// does not pin a value over time.
//
// Key properties:
//   - Operations are pure: input trees are never mutated
//   - Duplicate inserts are rejected silently and never allocate an id
//   - EditValue rewrites a value in place without re-validating BST order
//   - Traversals and range queries are cheap, re-runnable readers
//
// Basic usage:
//
//	t := bst.New()
//	t = t.Insert(10)
//	t = t.Insert(5)
//	t = t.Insert(15)
//	vals := t.Traverse(bst.InOrder) // [5 10 15]
//
// The zero value is an empty tree and is ready to use.
package bst
