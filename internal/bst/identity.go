package bst

import "sync/atomic"

// NodeID is an opaque stable identifier for a node. It is unique for the
// lifetime of the process, assigned once at node creation, and never reused
// for a different logical node. IDs are not persisted and carry no meaning
// across processes.
type NodeID uint64

// nodeIDCounter is the global id source. IDs start at 1 so the zero NodeID
// can mean "no node".
var nodeIDCounter uint64

// NewNodeID returns an identifier distinct from every id previously issued
// in this process.
func NewNodeID() NodeID {
	return NodeID(atomic.AddUint64(&nodeIDCounter, 1))
}

// ReserveNodeIDs advances the allocator so that no future NewNodeID call
// returns an id at or below the given one. Callers that admit ids from
// outside the process, such as a decoded document, use this to keep the
// uniqueness guarantee intact.
func ReserveNodeIDs(id NodeID) {
	for {
		cur := atomic.LoadUint64(&nodeIDCounter)
		if cur >= uint64(id) {
			return
		}
		if atomic.CompareAndSwapUint64(&nodeIDCounter, cur, uint64(id)) {
			return
		}
	}
}
