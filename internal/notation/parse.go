package notation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/treestorm/internal/bst"
)

// lineForm identifies which of the recognized line shapes a line matched.
type lineForm uint8

const (
	formValue lineForm = iota
	formLeft
	formRight
)

func (f lineForm) String() string {
	switch f {
	case formLeft:
		return "left:"
	case formRight:
		return "right:"
	default:
		return "value:"
	}
}

// scannedLine is one structural line after lexical checks.
type scannedLine struct {
	num   int    // 1-based line number
	raw   string // line as written
	depth int    // nesting level, indent divided by the unit
	form  lineForm
	value int64 // payload for formValue
}

// parseFrame is one open node context on the parser stack.
type parseFrame struct {
	depth       int
	node        *bst.Node
	seenLeft    bool
	seenRight   bool
	hasPending  bool     // an introducer is waiting for its child block
	pending     lineForm // which side the open introducer names
	pendingLine int
	pendingRaw  string
}

// parser consumes scanned lines and builds the tree over an explicit frame
// stack, so multi-level dedents and error attribution need no recursion.
type parser struct {
	frames []parseFrame
	root   *bst.Node
}

// Parse builds a tree from notation text. Blank lines are skipped but still
// counted for error line numbers. Empty input yields an empty tree. Every
// successful parse allocates fresh node ids. On failure the returned error
// is a *ParseError and the returned tree is empty.
func Parse(text string) (bst.Tree, error) {
	p := &parser{}
	for idx, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ln, perr := scanLine(idx+1, raw)
		if perr != nil {
			return bst.Tree{}, perr
		}
		if perr := p.feed(ln); perr != nil {
			return bst.Tree{}, perr
		}
	}
	if perr := p.finish(); perr != nil {
		return bst.Tree{}, perr
	}
	return bst.FromRoot(p.root), nil
}

// scanLine performs the lexical checks on a non-blank line: indent
// measurement and form recognition.
func scanLine(num int, raw string) (scannedLine, *ParseError) {
	i := 0
	for i < len(raw) && raw[i] == ' ' {
		i++
	}
	if i < len(raw) && raw[i] == '\t' {
		return scannedLine{}, &ParseError{
			Line:     num,
			Raw:      raw,
			Category: BadIndentation,
			Message:  "bad indentation: tab character in indent, use two spaces per level",
		}
	}
	if i%indentWidth != 0 {
		return scannedLine{}, &ParseError{
			Line:     num,
			Raw:      raw,
			Category: BadIndentation,
			Message:  fmt.Sprintf("bad indentation: %d spaces is not a multiple of %d", i, indentWidth),
		}
	}

	ln := scannedLine{num: num, raw: raw, depth: i / indentWidth}
	content := raw[i:]
	switch {
	case content == "left:":
		ln.form = formLeft
	case content == "right:":
		ln.form = formRight
	case strings.HasPrefix(content, "value:"):
		payload := strings.TrimSpace(content[len("value:"):])
		v, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return scannedLine{}, &ParseError{
				Line:     num,
				Raw:      raw,
				Category: InvalidInteger,
				Message:  fmt.Sprintf("invalid integer %q", payload),
			}
		}
		ln.form = formValue
		ln.value = v
	default:
		return scannedLine{}, &ParseError{
			Line:     num,
			Raw:      raw,
			Category: InvalidLine,
			Message:  fmt.Sprintf("unrecognized line %q: expected \"value: <int>\", \"left:\" or \"right:\"", strings.TrimSpace(content)),
		}
	}
	return ln, nil
}

// feed advances the parse by one structural line.
func (p *parser) feed(ln scannedLine) *ParseError {
	// Before the first value: line only a root node at depth 0 may start.
	if len(p.frames) == 0 {
		if ln.depth != 0 {
			return lineErr(ln, UnexpectedIndent, "unexpected indentation before any value: line")
		}
		if ln.form != formValue {
			return lineErr(ln, InvalidLine, fmt.Sprintf("%q before any value: line", ln.form.String()))
		}
		p.root = &bst.Node{Value: bst.Value(ln.value), ID: bst.NewNodeID()}
		p.frames = append(p.frames, parseFrame{depth: 0, node: p.root})
		return nil
	}

	top := &p.frames[len(p.frames)-1]

	// An open introducer accepts exactly one thing: the child's value:
	// line one unit deeper. Anything else ends or breaks its block.
	if top.hasPending {
		switch {
		case ln.depth == top.depth+1 && ln.form == formValue:
			child := &bst.Node{Value: bst.Value(ln.value), ID: bst.NewNodeID()}
			if top.pending == formLeft {
				top.node.Left = child
			} else {
				top.node.Right = child
			}
			top.hasPending = false
			p.frames = append(p.frames, parseFrame{depth: top.depth + 1, node: child})
			return nil
		case ln.depth > top.depth+1:
			return lineErr(ln, UnexpectedIndent, fmt.Sprintf(
				"unexpected indentation: expected %d spaces under %q, got %d",
				(top.depth+1)*indentWidth, strings.TrimSpace(top.pendingRaw), ln.depth*indentWidth))
		default:
			return &ParseError{
				Line:     top.pendingLine,
				Raw:      top.pendingRaw,
				Category: EmptyBlock,
				Message:  fmt.Sprintf("empty child block: no value: line under %q", top.pending.String()),
			}
		}
	}

	// No block is open, so deeper lines have nothing to belong to.
	if ln.depth > top.depth {
		return lineErr(ln, UnexpectedIndent, "unexpected indentation: no open left:/right: block at this depth")
	}

	// A dedent closes every context deeper than the line. Open depths are
	// consecutive, so the line always lands on an enclosing frame.
	for p.frames[len(p.frames)-1].depth > ln.depth {
		p.frames = p.frames[:len(p.frames)-1]
	}
	top = &p.frames[len(p.frames)-1]

	switch ln.form {
	case formValue:
		return lineErr(ln, DuplicateKey, `duplicated mapping key "value"`)
	case formLeft:
		if top.seenLeft {
			return lineErr(ln, DuplicateKey, `duplicated mapping key "left"`)
		}
		top.seenLeft = true
		top.open(ln)
	case formRight:
		if top.seenRight {
			return lineErr(ln, DuplicateKey, `duplicated mapping key "right"`)
		}
		top.seenRight = true
		top.open(ln)
	}
	return nil
}

// open records an introducer waiting for its child block.
func (f *parseFrame) open(ln scannedLine) {
	f.hasPending = true
	f.pending = ln.form
	f.pendingLine = ln.num
	f.pendingRaw = ln.raw
}

// finish validates end-of-input state.
func (p *parser) finish() *ParseError {
	if len(p.frames) == 0 {
		return nil
	}
	top := &p.frames[len(p.frames)-1]
	if top.hasPending {
		return &ParseError{
			Line:     top.pendingLine,
			Raw:      top.pendingRaw,
			Category: EmptyBlock,
			Message:  fmt.Sprintf("empty child block: no value: line under %q", top.pending.String()),
		}
	}
	return nil
}

func lineErr(ln scannedLine, c Category, msg string) *ParseError {
	return &ParseError{Line: ln.num, Raw: ln.raw, Category: c, Message: msg}
}
