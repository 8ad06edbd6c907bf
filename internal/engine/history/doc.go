// Package history provides bounded undo/redo over tree snapshots.
//
// Each entry pairs the tree before a mutation with the tree after it.
// Undo restores the before-tree, redo the after-tree. Because trees
// share structure and never mutate in place, entries are root pointers
// rather than copies, so a deep history stays cheap.
//
// Pushes made between BeginGroup and EndGroup coalesce into a single
// entry, so a scripted batch of mutations undoes in one step.
package history
