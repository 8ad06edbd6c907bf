package bst

// Value is the signed integer key stored in a node.
type Value int64

// Node is a single tree node. Fields are exported so collaborating packages
// (codecs, render models, scripts) can walk the structure, but callers must
// treat reachable nodes as read-only: every structural change goes through a
// Tree operation, which works on a fresh copy.
type Node struct {
	Value Value
	ID    NodeID
	Left  *Node
	Right *Node
}

// newNode creates a leaf node with a freshly allocated id.
func newNode(v Value) *Node {
	return &Node{Value: v, ID: NewNodeID()}
}

// cloneNode deep-copies the subtree rooted at n, preserving values and ids.
func cloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{
		Value: n.Value,
		ID:    n.ID,
		Left:  cloneNode(n.Left),
		Right: cloneNode(n.Right),
	}
}
