package notation

import (
	"testing"

	"github.com/dshills/treestorm/internal/bst"
)

func TestMarshalEmpty(t *testing.T) {
	if got := Marshal(bst.New()); got != "" {
		t.Errorf("Marshal(empty) = %q, want empty string", got)
	}
}

func TestMarshalSingleNode(t *testing.T) {
	if got := Marshal(bst.FromValues(10)); got != "value: 10" {
		t.Errorf("got %q, want %q", got, "value: 10")
	}
}

func TestMarshalFullNode(t *testing.T) {
	got := Marshal(bst.FromValues(10, 5, 15))
	want := "value: 10\nleft:\n  value: 5\nright:\n  value: 15"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarshalLeftOnly(t *testing.T) {
	got := Marshal(bst.FromValues(10, 5))
	want := "value: 10\nleft:\n  value: 5"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarshalRightOnly(t *testing.T) {
	got := Marshal(bst.FromValues(10, 15))
	want := "value: 10\nright:\n  value: 15"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarshalNestedIndentation(t *testing.T) {
	got := Marshal(bst.FromValues(10, 5, 3))
	want := "value: 10\n" +
		"left:\n" +
		"  value: 5\n" +
		"  left:\n" +
		"    value: 3"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMarshalLeftBlockPrecedesRight(t *testing.T) {
	// Parsing accepts right-before-left, but serialization is canonical.
	tr := mustParse(t, "value: 10\nright:\n  value: 15\nleft:\n  value: 5")
	want := "value: 10\nleft:\n  value: 5\nright:\n  value: 15"
	if got := Marshal(tr); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarshalNegativeValues(t *testing.T) {
	got := Marshal(bst.FromValues(-5, -10))
	want := "value: -5\nleft:\n  value: -10"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
