// Package notation translates between trees and the indentation-sensitive
// text notation the editor exposes for hand editing.
//
// The notation renders one node per `value: <int>` line, with `left:` and
// `right:` introducer lines at the node's own depth and each child block
// indented exactly one two-space unit deeper:
//
//	value: 10
//	left:
//	  value: 5
//	right:
//	  value: 15
//
// Marshal never fails; an empty tree is the empty string. Parse is driven by
// an explicit stack of (depth, node) frames so dedents that close several
// blocks at once and per-line error attribution stay simple. Parse failures
// are *ParseError values carrying the 1-based line number, the raw line, a
// category, and a human-readable message; parsing never panics and never
// returns a partial tree.
//
// Every parse constructs fresh nodes with newly allocated ids. Callers that
// need id continuity across an edit keep the previous tree; the notation is
// a value-level format and carries no identity.
//
// Repair is a best-effort pre-pass over malformed text: it strips trailing
// whitespace, expands leading tabs, and re-levels inconsistent indent widths
// against the smallest step found in the text. Its output is advisory and
// must be re-validated by Parse.
package notation
