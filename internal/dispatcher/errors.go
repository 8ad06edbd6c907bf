package dispatcher

import "errors"

// ErrNoHandler is returned inside an error result when no handler is
// registered for the dispatched action name.
var ErrNoHandler = errors.New("dispatcher: no handler for action")
