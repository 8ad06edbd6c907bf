package notation

import (
	"math"
	"strings"
)

// measuredLine is one input line of Repair after lexical cleanup.
type measuredLine struct {
	content string // text after indentation, trailing whitespace stripped
	width   int    // observed indent width, tabs expanded
	blank   bool
}

// Repair normalizes malformed indentation best-effort: trailing whitespace
// is stripped, each leading tab counts as one level's width, and every
// line's depth is re-expressed against the smallest nonzero indent step
// found anywhere in the text, then clamped so a line deepens by at most one
// level over its nearest preceding structural line (any shallower level is
// always permitted, since open levels are consecutive).
//
// Repair never fails and its output is only advisory: callers must re-parse
// the result and still handle a parse error. Blank lines pass through so
// later error line numbers stay aligned with the original text.
func Repair(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	measured := make([]measuredLine, len(lines))
	step := 0
	for i, raw := range lines {
		trimmed := strings.TrimRight(raw, " \t")
		if trimmed == "" {
			measured[i] = measuredLine{blank: true}
			continue
		}
		w, j := 0, 0
		for j < len(trimmed) {
			if trimmed[j] == ' ' {
				w++
			} else if trimmed[j] == '\t' {
				w += indentWidth
			} else {
				break
			}
			j++
		}
		measured[i] = measuredLine{content: trimmed[j:], width: w}
		if w > 0 && (step == 0 || w < step) {
			step = w
		}
	}
	if step == 0 {
		step = indentWidth
	}

	var b strings.Builder
	b.Grow(len(text))
	prev := 0
	first := true
	for i, m := range measured {
		if i > 0 {
			b.WriteByte('\n')
		}
		if m.blank {
			continue
		}
		level := int(math.Round(float64(m.width) / float64(step)))
		switch {
		case first:
			level = 0
			first = false
		case level > prev+1:
			level = prev + 1
		}
		b.WriteString(strings.Repeat(indentUnit, level))
		b.WriteString(m.content)
		prev = level
	}
	return b.String()
}
