package bst

import (
	"fmt"
	"strings"
)

// Order selects one of the standard traversal sequences.
type Order uint8

const (
	// InOrder visits left subtree, node, right subtree.
	InOrder Order = iota
	// PreOrder visits node, left subtree, right subtree.
	PreOrder
	// PostOrder visits left subtree, right subtree, node.
	PostOrder
)

// String returns the order's canonical name.
func (o Order) String() string {
	switch o {
	case InOrder:
		return "inorder"
	case PreOrder:
		return "preorder"
	case PostOrder:
		return "postorder"
	default:
		return fmt.Sprintf("order(%d)", uint8(o))
	}
}

// ParseOrder maps a command-surface name to an Order. Accepted forms:
// "in"/"inorder", "pre"/"preorder", "post"/"postorder", case-insensitive.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inorder", "in-order":
		return InOrder, nil
	case "pre", "preorder", "pre-order":
		return PreOrder, nil
	case "post", "postorder", "post-order":
		return PostOrder, nil
	default:
		return InOrder, fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// walkFrame is one pending step of an iterative traversal: either a subtree
// still to expand or a node ready to visit.
type walkFrame struct {
	node  *Node
	visit bool
}

// Walk visits every node in the given order, stopping early when fn returns
// false. The traversal is iterative over an explicit frame stack, so deep or
// degenerate trees cannot exhaust goroutine stack.
func (t Tree) Walk(order Order, fn func(*Node) bool) {
	if t.root == nil {
		return
	}
	stack := make([]walkFrame, 0, 16)
	stack = append(stack, walkFrame{node: t.root})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if f.visit {
			if !fn(f.node) {
				return
			}
			continue
		}
		// Children and the visit marker are pushed in reverse of the
		// order they should pop.
		switch order {
		case PreOrder:
			stack = append(stack,
				walkFrame{node: f.node.Right},
				walkFrame{node: f.node.Left},
				walkFrame{node: f.node, visit: true},
			)
		case PostOrder:
			stack = append(stack,
				walkFrame{node: f.node, visit: true},
				walkFrame{node: f.node.Right},
				walkFrame{node: f.node.Left},
			)
		default:
			stack = append(stack,
				walkFrame{node: f.node.Right},
				walkFrame{node: f.node, visit: true},
				walkFrame{node: f.node.Left},
			)
		}
	}
}

// Traverse returns the tree's values in the given order. An empty tree
// yields an empty sequence. The result is freshly computed on every call.
func (t Tree) Traverse(order Order) []Value {
	if t.root == nil {
		return nil
	}
	out := make([]Value, 0, 16)
	t.Walk(order, func(n *Node) bool {
		out = append(out, n.Value)
		return true
	})
	return out
}

// RangeQuery returns, in ascending order, every value v with min <= v <= max.
// Subtrees that the ordering invariant places entirely outside the range are
// pruned rather than visited, so results are only guaranteed complete while
// the invariant holds (EditValue can suspend it; see Tree.EditValue).
// min > max yields an empty sequence rather than an error.
func (t Tree) RangeQuery(min, max Value) []Value {
	if t.root == nil || min > max {
		return nil
	}
	var out []Value
	stack := make([]walkFrame, 0, 16)
	stack = append(stack, walkFrame{node: t.root})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			continue
		}
		if f.visit {
			if f.node.Value >= min && f.node.Value <= max {
				out = append(out, f.node.Value)
			}
			continue
		}
		// In-order expansion with range pruning: the left subtree can
		// only matter when this value exceeds min, the right only when
		// it is below max.
		if f.node.Value < max {
			stack = append(stack, walkFrame{node: f.node.Right})
		}
		stack = append(stack, walkFrame{node: f.node, visit: true})
		if f.node.Value > min {
			stack = append(stack, walkFrame{node: f.node.Left})
		}
	}
	return out
}
