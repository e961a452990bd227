package registry

import (
	"context"
	"fmt"
	"sync"
)

// ActivityFunc is the signature every registered activity implements. Arguments
// arrive positional, already resolved from the run's variable scope.
type ActivityFunc func(ctx context.Context, args []any) (any, error)

// Registry maps activity names to implementations. Lookups are cheap and safe
// under concurrent use; registration normally happens once at startup.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]ActivityFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		activities: make(map[string]ActivityFunc),
	}
}

// Register adds an activity. Registering a nil function or an empty name is a
// programming error and fails immediately rather than at dispatch time.
func (r *Registry) Register(name string, fn ActivityFunc) error {
	if name == "" {
		return fmt.Errorf("registry: activity name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("registry: activity %q must not be nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.activities[name]; exists {
		return fmt.Errorf("registry: activity %q already registered", name)
	}
	r.activities[name] = fn
	return nil
}

// MustRegister is Register that panics on error, for static startup wiring.
func (r *Registry) MustRegister(name string, fn ActivityFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the named activity, or false when unknown. Graph validation
// uses this to reject unresolvable names before a run starts.
func (r *Registry) Lookup(name string) (ActivityFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.activities[name]
	return fn, ok
}

// Execute dispatches the named activity.
func (r *Registry) Execute(ctx context.Context, name string, args []any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("registry: activity not found: %s", name)
	}
	return fn(ctx, args)
}

// Names returns the registered activity names, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	return names
}
