package protocol

import (
	"github.com/tidwall/sjson"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/notation"
)

// MarshalTree renders tree as a JSON document. Node ids are included so
// the document round-trips through UnmarshalTree with identity intact.
func MarshalTree(tree bst.Tree) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, "empty", tree.IsEmpty()); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "size", tree.Size()); err != nil {
		return nil, err
	}
	if tree.IsEmpty() {
		return doc, nil
	}
	root, err := marshalNodes(tree)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(doc, "root", root)
}

// marshalNodes renders the node graph bottom-up. A post-order walk
// guarantees both children are rendered before their parent, so the
// parent can splice them in as raw fragments. The walk is stack-based,
// which keeps degenerate chain-shaped trees from exhausting the
// goroutine stack.
func marshalNodes(tree bst.Tree) ([]byte, error) {
	rendered := make(map[*bst.Node][]byte, tree.Size())
	var walkErr error
	tree.Walk(bst.PostOrder, func(n *bst.Node) bool {
		doc, err := marshalNode(n, rendered)
		if err != nil {
			walkErr = err
			return false
		}
		rendered[n] = doc
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return rendered[tree.Root()], nil
}

func marshalNode(n *bst.Node, rendered map[*bst.Node][]byte) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, "id", uint64(n.ID)); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "value", int64(n.Value)); err != nil {
		return nil, err
	}
	if n.Left != nil {
		if doc, err = sjson.SetRawBytes(doc, "left", rendered[n.Left]); err != nil {
			return nil, err
		}
	}
	if n.Right != nil {
		if doc, err = sjson.SetRawBytes(doc, "right", rendered[n.Right]); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// MarshalParseError renders a notation parse error as JSON for
// programmatic consumers.
func MarshalParseError(pe *notation.ParseError) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, "line", pe.Line); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "category", pe.Category.String()); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "message", pe.Message); err != nil {
		return nil, err
	}
	return sjson.SetBytes(doc, "raw", pe.Raw)
}
