package dispatcher

import "github.com/dshills/treestorm/internal/bst"

// Source indicates where an action originated.
type Source uint8

const (
	// SourceAPI marks actions dispatched programmatically.
	SourceAPI Source = iota
	// SourceREPL marks actions typed into the interactive loop.
	SourceREPL
	// SourceScript marks actions raised by the script host.
	SourceScript
)

// String returns a short name for the source.
func (s Source) String() string {
	switch s {
	case SourceAPI:
		return "api"
	case SourceREPL:
		return "repl"
	case SourceScript:
		return "script"
	default:
		return "unknown"
	}
}

// Args carries the arguments an action may need. Unused fields stay at
// their zero values; each handler reads only the fields it documents.
type Args struct {
	// Value is the integer operand for tree.insert, tree.delete,
	// tree.find, and tree.edit.
	Value bst.Value

	// NodeID targets a node for tree.edit.
	NodeID bst.NodeID

	// Min and Max bound tree.range.
	Min bst.Value
	Max bst.Value

	// Order names a traversal order for tree.traverse. Empty means
	// in-order.
	Order string

	// Text carries notation input for notation.parse and
	// notation.repair.
	Text string

	// Name references a snapshot for history.snapshot and
	// history.restore.
	Name string

	// Count limits history.changes output. Zero means everything.
	Count int
}

// Action is a command to be executed by the dispatcher.
type Action struct {
	// Name is the command identifier (e.g. "tree.insert").
	Name string

	// Args contains command-specific arguments.
	Args Args

	// Source indicates where this action originated.
	Source Source
}
