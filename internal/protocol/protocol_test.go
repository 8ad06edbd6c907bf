package protocol

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/notation"
)

func TestMarshalEmptyTree(t *testing.T) {
	data, err := MarshalTree(bst.New())
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}

	doc := gjson.ParseBytes(data)
	if !doc.Get("empty").Bool() {
		t.Errorf("empty = %v, want true", doc.Get("empty").Value())
	}
	if doc.Get("size").Int() != 0 {
		t.Errorf("size = %d, want 0", doc.Get("size").Int())
	}
	if doc.Get("root").Exists() {
		t.Error("empty tree document should have no root key")
	}
}

func TestMarshalTreeShape(t *testing.T) {
	tree := bst.FromValues(5, 3, 8)

	data, err := MarshalTree(tree)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}

	doc := gjson.ParseBytes(data)
	if doc.Get("empty").Bool() {
		t.Error("empty = true, want false")
	}
	if doc.Get("size").Int() != 3 {
		t.Errorf("size = %d, want 3", doc.Get("size").Int())
	}
	if got := doc.Get("root.value").Int(); got != 5 {
		t.Errorf("root.value = %d, want 5", got)
	}
	if got := doc.Get("root.left.value").Int(); got != 3 {
		t.Errorf("root.left.value = %d, want 3", got)
	}
	if got := doc.Get("root.right.value").Int(); got != 8 {
		t.Errorf("root.right.value = %d, want 8", got)
	}
	if doc.Get("root.id").Int() < 1 {
		t.Errorf("root.id = %d, want >= 1", doc.Get("root.id").Int())
	}
}

func TestMarshalOmitsAbsentChildren(t *testing.T) {
	tree := bst.FromValues(5, 8) // right child only

	data, err := MarshalTree(tree)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}

	doc := gjson.ParseBytes(data)
	if doc.Get("root.left").Exists() {
		t.Error("absent left child should be omitted, not encoded")
	}
	if !doc.Get("root.right").Exists() {
		t.Error("right child missing from document")
	}
}

func TestRoundTripPreservesIDs(t *testing.T) {
	tree := bst.FromValues(50, 30, 70, 20, 40, 60, 80, 35)

	data, err := MarshalTree(tree)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}

	if got.Size() != tree.Size() {
		t.Fatalf("size = %d, want %d", got.Size(), tree.Size())
	}
	sameTree(t, tree.Root(), got.Root(), "root")
}

func sameTree(t *testing.T, want, got *bst.Node, path string) {
	t.Helper()
	if (want == nil) != (got == nil) {
		t.Fatalf("%s: presence mismatch (want nil=%v, got nil=%v)", path, want == nil, got == nil)
	}
	if want == nil {
		return
	}
	if got.Value != want.Value {
		t.Errorf("%s.value = %d, want %d", path, got.Value, want.Value)
	}
	if got.ID != want.ID {
		t.Errorf("%s.id = %d, want %d", path, got.ID, want.ID)
	}
	sameTree(t, want.Left, got.Left, path+".left")
	sameTree(t, want.Right, got.Right, path+".right")
}

func TestUnmarshalEmptyDocuments(t *testing.T) {
	for _, doc := range []string{`{"empty":true,"size":0}`, `{}`} {
		tree, err := UnmarshalTree([]byte(doc))
		if err != nil {
			t.Errorf("UnmarshalTree(%q): %v", doc, err)
			continue
		}
		if !tree.IsEmpty() {
			t.Errorf("UnmarshalTree(%q) size = %d, want empty", doc, tree.Size())
		}
	}
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{"empty":`},
		{"top level array", `[1,2,3]`},
		{"root not object", `{"root": 5}`},
		{"root null child", `{"root":{"id":1,"value":5,"left":null}}`},
		{"missing id", `{"root":{"value":5}}`},
		{"string id", `{"root":{"id":"one","value":5}}`},
		{"zero id", `{"root":{"id":0,"value":5}}`},
		{"fractional id", `{"root":{"id":1.5,"value":5}}`},
		{"missing value", `{"root":{"id":1}}`},
		{"string value", `{"root":{"id":1,"value":"five"}}`},
		{"fractional value", `{"root":{"id":1,"value":5.5}}`},
		{"duplicate ids", `{"root":{"id":1,"value":5,"left":{"id":1,"value":3}}}`},
		{"size mismatch", `{"size":5,"root":{"id":1,"value":5}}`},
		{"empty false without root", `{"empty":false,"size":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTree([]byte(tt.doc))
			if !errors.Is(err, ErrMalformedDocument) {
				t.Errorf("error = %v, want ErrMalformedDocument", err)
			}
		})
	}
}

func TestUnmarshalReservesDecodedIDs(t *testing.T) {
	doc := `{"empty":false,"size":1,"root":{"id":90000,"value":5}}`
	tree, err := UnmarshalTree([]byte(doc))
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}

	tree = tree.Insert(7)
	var inserted *bst.Node
	tree.Walk(bst.InOrder, func(n *bst.Node) bool {
		if n.Value == 7 {
			inserted = n
			return false
		}
		return true
	})
	if inserted == nil {
		t.Fatal("inserted node not found")
	}
	if inserted.ID <= 90000 {
		t.Errorf("new node id = %d, want > 90000 (allocator must skip decoded ids)", inserted.ID)
	}
}

func TestMarshalParseError(t *testing.T) {
	pe := &notation.ParseError{
		Line:     4,
		Raw:      "\tvalue: 9",
		Message:  "indentation must use spaces, found tab",
		Category: notation.BadIndentation,
	}

	data, err := MarshalParseError(pe)
	if err != nil {
		t.Fatalf("MarshalParseError: %v", err)
	}

	doc := gjson.ParseBytes(data)
	if got := doc.Get("line").Int(); got != 4 {
		t.Errorf("line = %d, want 4", got)
	}
	if got := doc.Get("category").String(); got != "bad_indentation" {
		t.Errorf("category = %q, want %q", got, "bad_indentation")
	}
	if got := doc.Get("message").String(); got != pe.Message {
		t.Errorf("message = %q, want %q", got, pe.Message)
	}
	if got := doc.Get("raw").String(); got != "\tvalue: 9" {
		t.Errorf("raw = %q, want %q", got, pe.Raw)
	}
}

func TestMarshalNegativeValues(t *testing.T) {
	tree := bst.FromValues(-5, -10, 0)

	data, err := MarshalTree(tree)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	got, err := UnmarshalTree(data)
	if err != nil {
		t.Fatalf("UnmarshalTree: %v", err)
	}

	want := []bst.Value{-10, -5, 0}
	vals := got.Traverse(bst.InOrder)
	if len(vals) != len(want) {
		t.Fatalf("traverse length = %d, want %d", len(vals), len(want))
	}
	for i, v := range vals {
		if v != want[i] {
			t.Errorf("traverse[%d] = %d, want %d", i, v, want[i])
		}
	}
}
