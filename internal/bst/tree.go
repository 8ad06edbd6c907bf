package bst

// Tree is an immutable binary search tree. The zero value is an empty tree.
//
// Ordering invariant: for every node, all values in its left subtree are
// strictly less than the node's value and all values in its right subtree
// are strictly greater. Duplicates are rejected by Insert, not stored.
// EditValue can transiently violate the invariant; see its documentation.
type Tree struct {
	root *Node
}

// New creates an empty tree.
func New() Tree {
	return Tree{}
}

// FromRoot wraps an existing node structure in a Tree. The caller hands over
// exclusive ownership of root and must not retain references that mutate it.
// Used by codecs that build node structures directly.
func FromRoot(root *Node) Tree {
	return Tree{root: root}
}

// FromValues builds a tree by inserting each value in order.
func FromValues(vals ...Value) Tree {
	t := New()
	for _, v := range vals {
		t = t.Insert(v)
	}
	return t
}

// Root returns the root node, or nil for an empty tree. The returned
// structure is read-only to the caller.
func (t Tree) Root() *Node {
	return t.root
}

// IsEmpty reports whether the tree has no nodes.
func (t Tree) IsEmpty() bool {
	return t.root == nil
}

// Size returns the number of nodes.
func (t Tree) Size() int {
	n := 0
	t.Walk(PreOrder, func(*Node) bool {
		n++
		return true
	})
	return n
}

// Height returns the number of nodes on the longest root-to-leaf path.
// An empty tree has height 0.
func (t Tree) Height() int {
	type frame struct {
		node  *Node
		depth int
	}
	if t.root == nil {
		return 0
	}
	max := 0
	stack := []frame{{node: t.root, depth: 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > max {
			max = f.depth
		}
		if f.node.Right != nil {
			stack = append(stack, frame{node: f.node.Right, depth: f.depth + 1})
		}
		if f.node.Left != nil {
			stack = append(stack, frame{node: f.node.Left, depth: f.depth + 1})
		}
	}
	return max
}

// Contains reports whether v is present, descending by comparison.
func (t Tree) Contains(v Value) bool {
	return t.Find(v) != nil
}

// Find returns the node holding v, or nil when absent. Like Contains it
// descends by comparison, so it assumes the ordering invariant holds
// along the search path. The result is read-only to the caller.
func (t Tree) Find(v Value) *Node {
	n := t.root
	for n != nil {
		switch {
		case v < n.Value:
			n = n.Left
		case v > n.Value:
			n = n.Right
		default:
			return n
		}
	}
	return nil
}

// FindID returns the node carrying id, searching by identity rather than by
// value so it works even when EditValue has broken the ordering invariant.
// Returns nil if no node has the id. The result is read-only to the caller.
func (t Tree) FindID(id NodeID) *Node {
	return findID(t.root, id)
}

func findID(root *Node, id NodeID) *Node {
	if root == nil {
		return nil
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.ID == id {
			return n
		}
		if n.Right != nil {
			stack = append(stack, n.Right)
		}
		if n.Left != nil {
			stack = append(stack, n.Left)
		}
	}
	return nil
}

// Clone deep-copies the tree, preserving every value and id.
// Returns a new tree; the original is unchanged.
func (t Tree) Clone() Tree {
	return Tree{root: cloneNode(t.root)}
}

// Insert adds v at the first absent slot found by descending comparisons,
// creating a node with a freshly allocated id. If v is already present the
// content is returned unchanged and no id is allocated; a second insert of
// an existing value never creates a new node.
// Returns a new tree; the original is unchanged.
func (t Tree) Insert(v Value) Tree {
	root := cloneNode(t.root)
	if root == nil {
		return Tree{root: newNode(v)}
	}
	n := root
	for {
		switch {
		case v < n.Value:
			if n.Left == nil {
				n.Left = newNode(v)
				return Tree{root: root}
			}
			n = n.Left
		case v > n.Value:
			if n.Right == nil {
				n.Right = newNode(v)
				return Tree{root: root}
			}
			n = n.Right
		default:
			return Tree{root: root}
		}
	}
}

// Delete removes the node holding v; a missing value leaves the content
// unchanged. A node with two children adopts its in-order successor's value
// while the position keeps its id, and the successor is deleted from the
// right subtree; the removed node's own id is discarded.
// Returns a new tree; the original is unchanged.
func (t Tree) Delete(v Value) Tree {
	return Tree{root: deleteNode(cloneNode(t.root), v)}
}

// deleteNode removes v from the subtree rooted at n and returns the new
// subtree root. n is owned by the caller and is modified freely.
func deleteNode(n *Node, v Value) *Node {
	if n == nil {
		return nil
	}
	switch {
	case v < n.Value:
		n.Left = deleteNode(n.Left, v)
	case v > n.Value:
		n.Right = deleteNode(n.Right, v)
	default:
		if n.Left == nil {
			return n.Right
		}
		if n.Right == nil {
			return n.Left
		}
		s := n.Right
		for s.Left != nil {
			s = s.Left
		}
		n.Value = s.Value
		n.Right = deleteNode(n.Right, s.Value)
	}
	return n
}

// EditValue locates the node carrying id and rewrites its value in place,
// without re-validating or re-balancing BST ordering. A direct edit can
// leave the tree order-violated; ordering is only restored by later Insert
// or Delete calls or by the caller rebuilding. Traversals over a violated
// tree follow structural position and are well-defined but not sorted.
// An unknown id is a no-op. Returns a new tree; the original is unchanged.
func (t Tree) EditValue(id NodeID, v Value) Tree {
	root := cloneNode(t.root)
	if n := findID(root, id); n != nil {
		n.Value = v
	}
	return Tree{root: root}
}
