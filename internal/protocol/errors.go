package protocol

import "errors"

// ErrMalformedDocument is returned when a JSON document cannot be
// decoded into a tree. It is always wrapped with detail about what
// was wrong.
var ErrMalformedDocument = errors.New("protocol: malformed tree document")
