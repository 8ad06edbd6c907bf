package notation

import (
	"strconv"
	"strings"

	"github.com/dshills/treestorm/internal/bst"
)

const (
	// indentWidth is the number of spaces per nesting level.
	indentWidth = 2
	// indentUnit is one level of indentation.
	indentUnit = "  "
)

// Marshal renders the tree in the editor notation. The left block always
// precedes the right block. An empty tree renders as the empty string.
// Marshal never fails.
func Marshal(t bst.Tree) string {
	root := t.Root()
	if root == nil {
		return ""
	}
	lines := appendNode(nil, root, "")
	return strings.Join(lines, "\n")
}

// appendNode renders n and its children, each line prefixed with indent.
func appendNode(lines []string, n *bst.Node, indent string) []string {
	lines = append(lines, indent+"value: "+strconv.FormatInt(int64(n.Value), 10))
	if n.Left != nil {
		lines = append(lines, indent+"left:")
		lines = appendNode(lines, n.Left, indent+indentUnit)
	}
	if n.Right != nil {
		lines = append(lines, indent+"right:")
		lines = appendNode(lines, n.Right, indent+indentUnit)
	}
	return lines
}
