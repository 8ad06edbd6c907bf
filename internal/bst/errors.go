package bst

import "errors"

// ErrUnknownOrder is returned when a traversal order name cannot be parsed.
var ErrUnknownOrder = errors.New("unknown traversal order")
