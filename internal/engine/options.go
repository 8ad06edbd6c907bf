package engine

import (
	"github.com/rs/zerolog"

	"github.com/dshills/treestorm/internal/event"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithEventBus makes the engine publish on an existing bus instead of
// creating a private one. Useful when several components share one
// subscription surface.
func WithEventBus(bus *event.Bus) Option {
	return func(e *Engine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithMaxUndoEntries caps the undo history depth. Values below one keep
// the history package default.
func WithMaxUndoEntries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxUndoEntries = n
		}
	}
}

// WithChangeLogSize caps the change tracker's ring. Values below one
// keep the tracking package default.
func WithChangeLogSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.changeLogSize = n
		}
	}
}
