package dispatcher

import (
	"fmt"

	"github.com/dshills/treestorm/internal/bst"
	"github.com/dshills/treestorm/internal/engine"
)

// Handler processes a specific action or set of actions.
type Handler interface {
	// Handle executes the action against the engine and returns a result.
	Handle(action Action, eng *engine.Engine) Result

	// CanHandle reports whether this handler can process the action.
	CanHandle(actionName string) bool

	// Priority returns the handler priority (higher = checked first).
	Priority() int
}

// SimpleHandler wraps a function with an explicit action name.
type SimpleHandler struct {
	// ActionName is the name of the action this handler processes.
	ActionName string

	// Fn is the handler function.
	Fn func(action Action, eng *engine.Engine) Result

	// Prio is the handler priority.
	Prio int
}

// Handle implements Handler.Handle.
func (h *SimpleHandler) Handle(action Action, eng *engine.Engine) Result {
	if h.Fn == nil {
		return Errorf("handler function is nil")
	}
	return h.Fn(action, eng)
}

// CanHandle implements Handler.CanHandle.
func (h *SimpleHandler) CanHandle(actionName string) bool {
	return actionName == h.ActionName
}

// Priority implements Handler.Priority.
func (h *SimpleHandler) Priority() int {
	return h.Prio
}

// Status indicates the outcome of an action.
type Status uint8

const (
	// StatusOK indicates successful execution.
	StatusOK Status = iota
	// StatusNoOp indicates the action had no effect.
	StatusNoOp
	// StatusError indicates an error occurred.
	StatusError
	// StatusCancelled indicates a hook cancelled the action.
	StatusCancelled
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result represents the outcome of handling an action.
type Result struct {
	// Status indicates the result status.
	Status Status

	// Err contains any error that occurred.
	Err error

	// Message is an optional status line for display.
	Message string

	// Values holds traversal or range-query output.
	Values []bst.Value

	// Text holds notation or JSON output.
	Text string

	// Data holds handler-specific return data.
	Data map[string]any
}

// IsOK reports whether the result indicates success.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError reports whether the result indicates an error.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Success creates a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// SuccessWithMessage creates a successful result with a message.
func SuccessWithMessage(msg string) Result {
	return Result{Status: StatusOK, Message: msg}
}

// NoOp creates a no-operation result.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// NoOpWithMessage creates a no-operation result with a message.
func NoOpWithMessage(msg string) Result {
	return Result{Status: StatusNoOp, Message: msg}
}

// Error creates an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Err: err}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Result{Status: StatusError, Err: fmt.Errorf(format, args...)}
}

// Cancelled creates a cancelled result with a message.
func Cancelled(msg string) Result {
	return Result{Status: StatusCancelled, Message: msg}
}

// WithValues returns a copy of the result carrying values.
func (r Result) WithValues(vals []bst.Value) Result {
	r.Values = vals
	return r
}

// WithText returns a copy of the result carrying text output.
func (r Result) WithText(text string) Result {
	r.Text = text
	return r
}

// WithData returns a copy of the result with data added.
func (r Result) WithData(key string, value any) Result {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// GetData retrieves a value from the result data.
func (r Result) GetData(key string) (any, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}
