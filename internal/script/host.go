package script

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/treestorm/internal/engine"
)

// DefaultTimeout bounds a single script run.
const DefaultTimeout = 5 * time.Second

// groupLabel is the history description for script-driven edits.
const groupLabel = "script"

// Host owns a sandboxed Lua state bound to one engine.
// It is safe for concurrent use; runs are serialized.
type Host struct {
	mu      sync.Mutex
	state   *lua.LState
	eng     *engine.Engine
	timeout time.Duration
	log     zerolog.Logger
	closed  bool
}

// Option configures a Host.
type Option func(*Host)

// WithTimeout bounds each run. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Host) {
		h.log = log
	}
}

// NewHost creates a Lua host bound to eng. Only the base, table, string,
// and math libraries are opened.
func NewHost(eng *engine.Engine, opts ...Option) *Host {
	h := &Host{
		eng:     eng,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	h.state = L

	registerTreeModule(L, eng, h.regroup)
	return h
}

// openSafeLibraries loads only side-effect-free standard libraries.
// io, os, debug, and package are intentionally not opened.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// Run executes Lua source code. The whole run forms one history group, so
// a single undo reverts every edit the script made. Runtime and syntax
// errors are wrapped in ErrScriptFailed; edits applied before the failure
// stay in place and remain undoable as one step.
func (h *Host) Run(code string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	h.state.SetContext(ctx)
	defer h.state.RemoveContext()

	if err := h.eng.BeginUndoGroup(groupLabel); err != nil {
		return err
	}

	start := time.Now()
	err := h.doWithRecovery(func() error {
		return h.state.DoString(code)
	})
	if endErr := h.eng.EndUndoGroup(); err == nil {
		err = endErr
	}

	if err != nil {
		h.log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("script failed")
		return fmt.Errorf("%w: %v", ErrScriptFailed, err)
	}
	h.log.Debug().Dur("elapsed", time.Since(start)).Msg("script completed")
	return nil
}

// doWithRecovery converts panics escaping the Lua VM into errors.
func (h *Host) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// regroup commits the open script group, runs fn against the committed
// history, and opens a fresh group for the rest of the run. The tree
// module uses it so in-script undo and redo can see the script's own
// work as a completed step.
func (h *Host) regroup(fn func() error) error {
	if err := h.eng.EndUndoGroup(); err != nil {
		// No open group; plain call.
		return fn()
	}
	defer func() { _ = h.eng.BeginUndoGroup(groupLabel) }()
	return fn()
}

// Close releases the Lua state. Further runs return ErrHostClosed.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.state.Close()
}

// IsClosed reports whether Close has been called.
func (h *Host) IsClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
