package dispatcher

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/treestorm/internal/engine"
)

// PreHook runs before dispatch. Returning false cancels the action.
// The hook may rewrite the action in place.
type PreHook func(action *Action) bool

// PostHook runs after dispatch and may annotate the result.
type PostHook func(action Action, result *Result)

// Dispatcher routes actions to handlers and coordinates execution.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	engine   *engine.Engine
	metrics  *Metrics
	log      zerolog.Logger

	preHooks  []PreHook
	postHooks []PostHook
}

// Option configures a Dispatcher during creation.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// New creates a dispatcher bound to eng with the built-in tree.*,
// notation.*, and history.* handlers registered.
func New(eng *engine.Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		engine:   eng,
		metrics:  NewMetrics(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	registerBuiltins(d.registry)
	return d
}

// Engine returns the engine this dispatcher operates on.
func (d *Dispatcher) Engine() *engine.Engine {
	return d.engine
}

// Metrics returns the dispatch metrics collector.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Register adds a handler for an action name alongside the built-ins.
// A higher-priority handler shadows a built-in of the same name.
func (d *Dispatcher) Register(actionName string, h Handler) {
	d.registry.Register(actionName, h)
}

// Actions returns all registered action names, sorted.
func (d *Dispatcher) Actions() []string {
	return d.registry.List()
}

// AddPreHook appends a pre-dispatch hook.
func (d *Dispatcher) AddPreHook(h PreHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, h)
}

// AddPostHook appends a post-dispatch hook.
func (d *Dispatcher) AddPostHook(h PostHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, h)
}

// Dispatch executes an action synchronously and returns its result.
// Handler panics are recovered into error results; Dispatch itself
// never panics.
func (d *Dispatcher) Dispatch(action Action) Result {
	start := time.Now()

	if !d.runPreHooks(&action) {
		result := Cancelled("cancelled by hook")
		d.metrics.RecordDispatch(action.Name, time.Since(start), result.Status)
		return result
	}

	var result Result
	if h := d.registry.Get(action.Name); h != nil {
		result = d.executeWithRecovery(h, action)
	} else {
		result = Error(fmt.Errorf("%w: %s", ErrNoHandler, action.Name))
	}

	d.runPostHooks(action, &result)
	d.metrics.RecordDispatch(action.Name, time.Since(start), result.Status)

	d.log.Debug().
		Str("action", action.Name).
		Str("source", action.Source.String()).
		Str("status", result.Status.String()).
		Dur("duration", time.Since(start)).
		Msg("dispatched")

	return result
}

// executeWithRecovery executes a handler with panic recovery.
func (d *Dispatcher) executeWithRecovery(h Handler, action Action) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			result = Errorf("handler panic for %s: %v\n%s", action.Name, r, string(stack[:n]))
			d.metrics.RecordPanic(action.Name)
			d.log.Error().
				Str("action", action.Name).
				Interface("panic", r).
				Msg("handler panicked")
		}
	}()

	return h.Handle(action, d.engine)
}

// runPreHooks runs all pre-dispatch hooks. Returns false if any hook
// cancels the action.
func (d *Dispatcher) runPreHooks(action *Action) bool {
	d.mu.RLock()
	hooks := d.preHooks
	d.mu.RUnlock()

	for _, h := range hooks {
		if !h(action) {
			return false
		}
	}
	return true
}

// runPostHooks runs all post-dispatch hooks.
func (d *Dispatcher) runPostHooks(action Action, result *Result) {
	d.mu.RLock()
	hooks := d.postHooks
	d.mu.RUnlock()

	for _, h := range hooks {
		h(action, result)
	}
}
