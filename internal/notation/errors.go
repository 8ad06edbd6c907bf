package notation

import "fmt"

// Category classifies a parse failure for the presentation layer.
type Category uint8

const (
	// BadIndentation marks an indent that is not a multiple of the unit,
	// or contains a tab character.
	BadIndentation Category = iota
	// DuplicateKey marks a second value:, left:, or right: line in one
	// node context.
	DuplicateKey
	// InvalidInteger marks a value: line whose payload is not a valid
	// signed integer.
	InvalidInteger
	// EmptyBlock marks a left:/right: introducer with no value: line
	// immediately under it.
	EmptyBlock
	// UnexpectedIndent marks a depth with no valid continuation at the
	// current parse position.
	UnexpectedIndent
	// InvalidLine marks a line that is none of the recognized forms.
	InvalidLine
)

// String returns a stable lowercase token for the category, suitable for
// wire formats and log fields.
func (c Category) String() string {
	switch c {
	case BadIndentation:
		return "bad_indentation"
	case DuplicateKey:
		return "duplicate_key"
	case InvalidInteger:
		return "invalid_integer"
	case EmptyBlock:
		return "empty_block"
	case UnexpectedIndent:
		return "unexpected_indent"
	case InvalidLine:
		return "invalid_line"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// ParseError reports a single malformed line. It is returned as a value and
// carries everything the presentation layer needs to point at the mistake.
type ParseError struct {
	Line     int    // 1-based line number, counting blank lines
	Raw      string // the offending line as written
	Message  string // human-readable description
	Category Category
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
