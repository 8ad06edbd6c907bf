package protocol

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/dshills/treestorm/internal/bst"
)

// UnmarshalTree reconstructs a tree from a MarshalTree document. Node
// ids in the document are preserved, so identity-based operations keep
// working on the decoded tree.
func UnmarshalTree(data []byte) (bst.Tree, error) {
	if !gjson.ValidBytes(data) {
		return bst.Tree{}, fmt.Errorf("%w: not valid JSON", ErrMalformedDocument)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return bst.Tree{}, fmt.Errorf("%w: top level is not an object", ErrMalformedDocument)
	}

	root := doc.Get("root")
	if !root.Exists() {
		if empty := doc.Get("empty"); empty.Exists() && !empty.Bool() {
			return bst.Tree{}, fmt.Errorf("%w: empty is false but root is missing", ErrMalformedDocument)
		}
		return bst.New(), nil
	}

	rootNode, err := decodeNodes(root)
	if err != nil {
		return bst.Tree{}, err
	}
	tree := bst.FromRoot(rootNode)
	if size := doc.Get("size"); size.Exists() && int(size.Int()) != tree.Size() {
		return bst.Tree{}, fmt.Errorf("%w: size %d does not match %d decoded nodes",
			ErrMalformedDocument, size.Int(), tree.Size())
	}
	return tree, nil
}

// decodeFrame pairs a pending JSON fragment with the hook that attaches
// its node to the parent already built.
type decodeFrame struct {
	res    gjson.Result
	path   string
	attach func(*bst.Node)
}

// decodeNodes builds the node graph with an explicit work stack so
// document depth never translates into call depth.
func decodeNodes(root gjson.Result) (*bst.Node, error) {
	var top *bst.Node
	var maxID bst.NodeID
	seen := make(map[bst.NodeID]string)
	stack := []decodeFrame{{res: root, path: "root", attach: func(n *bst.Node) { top = n }}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, err := decodeNode(f.res, f.path, seen)
		if err != nil {
			return nil, err
		}
		f.attach(n)
		if n.ID > maxID {
			maxID = n.ID
		}

		if left := f.res.Get("left"); left.Exists() {
			stack = append(stack, decodeFrame{
				res:    left,
				path:   f.path + ".left",
				attach: func(c *bst.Node) { n.Left = c },
			})
		}
		if right := f.res.Get("right"); right.Exists() {
			stack = append(stack, decodeFrame{
				res:    right,
				path:   f.path + ".right",
				attach: func(c *bst.Node) { n.Right = c },
			})
		}
	}

	// Decoded ids entered from outside the process; keep the allocator
	// ahead of them so later inserts cannot collide.
	bst.ReserveNodeIDs(maxID)
	return top, nil
}

func decodeNode(res gjson.Result, path string, seen map[bst.NodeID]string) (*bst.Node, error) {
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: %s is not an object", ErrMalformedDocument, path)
	}

	id := res.Get("id")
	switch {
	case !id.Exists():
		return nil, fmt.Errorf("%w: %s has no id", ErrMalformedDocument, path)
	case id.Type != gjson.Number:
		return nil, fmt.Errorf("%w: %s id is not a number", ErrMalformedDocument, path)
	case id.Num < 1 || id.Num != math.Trunc(id.Num):
		return nil, fmt.Errorf("%w: %s id %v is not a positive integer", ErrMalformedDocument, path, id.Value())
	}

	value := res.Get("value")
	switch {
	case !value.Exists():
		return nil, fmt.Errorf("%w: %s has no value", ErrMalformedDocument, path)
	case value.Type != gjson.Number:
		return nil, fmt.Errorf("%w: %s value is not a number", ErrMalformedDocument, path)
	case value.Num != math.Trunc(value.Num):
		return nil, fmt.Errorf("%w: %s value %v is not an integer", ErrMalformedDocument, path, value.Value())
	}

	nodeID := bst.NodeID(id.Uint())
	if prior, dup := seen[nodeID]; dup {
		return nil, fmt.Errorf("%w: id %d appears at both %s and %s", ErrMalformedDocument, nodeID, prior, path)
	}
	seen[nodeID] = path

	return &bst.Node{Value: bst.Value(value.Int()), ID: nodeID}, nil
}
