package runtime

import "sync"

// Scope is the per-run variable arena. It is owned by a single workflow run;
// parallel branches execute on goroutines, so access is lock-guarded, but the
// graph validator already guarantees a single writer per key.
type Scope struct {
	mu   sync.RWMutex
	vars map[string]any
}

// NewScope creates a scope seeded with the caller's initial bindings.
func NewScope(initial map[string]any) *Scope {
	vars := make(map[string]any, len(initial))
	for name, value := range initial {
		vars[name] = value
	}
	return &Scope{vars: vars}
}

// Get reads a variable.
func (s *Scope) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.vars[name]
	return value, ok
}

// Set binds an activity result.
func (s *Scope) Set(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = value
}

// Snapshot copies the scope for returning to the caller.
func (s *Scope) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.vars))
	for name, value := range s.vars {
		out[name] = value
	}
	return out
}
