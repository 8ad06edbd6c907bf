// Package tracking records tree mutations and manages named snapshots.
//
// The Tracker keeps a bounded ring of Change records, one per applied
// mutation, tagged with the engine revision at which it happened. When
// the ring is full the oldest record is dropped. The SnapshotManager
// holds full tree snapshots keyed by id and optionally by name; because
// trees are immutable once built, a snapshot is a cheap root pointer,
// not a deep copy.
//
// Both types are safe for concurrent use.
package tracking
