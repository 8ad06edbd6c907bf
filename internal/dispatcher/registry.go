package dispatcher

import (
	"sort"
	"sync"
)

// Registry manages handler registration by exact action name.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler // action name -> handlers (sorted by priority)
}

// NewRegistry creates a new handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]Handler),
	}
}

// Register adds a handler for an action name. Multiple handlers can be
// registered for the same action; they are sorted by priority.
func (r *Registry) Register(actionName string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := append(r.handlers[actionName], h)
	sort.SliceStable(handlers, func(i, j int) bool {
		return handlers[i].Priority() > handlers[j].Priority()
	})
	r.handlers[actionName] = handlers
}

// Unregister removes all handlers for an action name.
func (r *Registry) Unregister(actionName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, actionName)
}

// Get returns the highest priority handler for an action, or nil when
// none is registered.
func (r *Registry) Get(actionName string) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers := r.handlers[actionName]
	if len(handlers) == 0 {
		return nil
	}
	return handlers[0]
}

// Has reports whether a handler is registered for the action.
func (r *Registry) Has(actionName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[actionName]) > 0
}

// List returns all registered action names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered action names.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
