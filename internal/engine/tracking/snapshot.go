package tracking

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/treestorm/internal/bst"
)

// ErrSnapshotNotFound is returned when a snapshot lookup misses.
var ErrSnapshotNotFound = errors.New("tracking: snapshot not found")

// SnapshotID uniquely identifies a snapshot within a process.
type SnapshotID uint64

var snapshotCounter atomic.Uint64

// NewSnapshotID returns the next process-wide snapshot id, starting at 1.
func NewSnapshotID() SnapshotID {
	return SnapshotID(snapshotCounter.Add(1))
}

// Snapshot is a point-in-time capture of a tree. The tree is shared,
// not copied: snapshots stay valid because mutations never touch
// existing nodes.
type Snapshot struct {
	ID       SnapshotID
	Name     string
	Tree     bst.Tree
	Revision uint64
	Time     time.Time
}

// SnapshotManager stores snapshots by id and, when named, by name.
type SnapshotManager struct {
	mu     sync.RWMutex
	byID   map[SnapshotID]Snapshot
	byName map[string]SnapshotID
}

// NewSnapshotManager creates an empty snapshot store.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{
		byID:   make(map[SnapshotID]Snapshot),
		byName: make(map[string]SnapshotID),
	}
}

// Create stores a snapshot of tree at revision rev and returns it.
// A non-empty name replaces any existing snapshot with the same name.
func (m *SnapshotManager) Create(name string, tree bst.Tree, rev uint64) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		ID:       NewSnapshotID(),
		Name:     name,
		Tree:     tree,
		Revision: rev,
		Time:     time.Now(),
	}
	if name != "" {
		if old, ok := m.byName[name]; ok {
			delete(m.byID, old)
		}
		m.byName[name] = snap.ID
	}
	m.byID[snap.ID] = snap
	return snap
}

// Get returns the snapshot with the given id.
func (m *SnapshotManager) Get(id SnapshotID) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.byID[id]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return snap, nil
}

// GetByName returns the snapshot with the given name.
func (m *SnapshotManager) GetByName(name string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byName[name]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	return m.byID[id], nil
}

// Delete removes the snapshot with the given id.
func (m *SnapshotManager) Delete(id SnapshotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.byID[id]
	if !ok {
		return ErrSnapshotNotFound
	}
	delete(m.byID, id)
	if snap.Name != "" {
		delete(m.byName, snap.Name)
	}
	return nil
}

// DeleteByName removes the snapshot with the given name.
func (m *SnapshotManager) DeleteByName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byName[name]
	if !ok {
		return ErrSnapshotNotFound
	}
	delete(m.byID, id)
	delete(m.byName, name)
	return nil
}

// List returns all snapshots ordered by id.
func (m *SnapshotManager) List() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.byID))
	for _, snap := range m.byID {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count reports how many snapshots are stored.
func (m *SnapshotManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Names returns the sorted names of all named snapshots.
func (m *SnapshotManager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.byName))
	for name := range m.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Clear removes every snapshot.
func (m *SnapshotManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID = make(map[SnapshotID]Snapshot)
	m.byName = make(map[string]SnapshotID)
}
