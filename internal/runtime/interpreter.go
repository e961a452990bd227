package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calvora/conveyor/pkg/domain"
	"github.com/calvora/conveyor/pkg/dsl"
	"github.com/calvora/conveyor/pkg/ports"
	"github.com/calvora/conveyor/pkg/registry"
)

// Interpreter executes a statement tree against one shared variable scope.
// Activities dispatch by name through the host, which owns retry and timeout;
// the interpreter owns ordering, fan-out and scope plumbing.
type Interpreter struct {
	host     ports.Host
	registry *registry.Registry
	policy   domain.RetryPolicy
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRetryPolicy overrides the retry policy applied to every activity call.
func WithRetryPolicy(policy domain.RetryPolicy) Option {
	return func(it *Interpreter) {
		it.policy = policy
	}
}

// WithActivityTimeout overrides the per-attempt activity timeout.
func WithActivityTimeout(timeout time.Duration) Option {
	return func(it *Interpreter) {
		it.timeout = timeout
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(it *Interpreter) {
		it.logger = logger
	}
}

// NewInterpreter creates an interpreter dispatching through host, resolving
// activity names against reg at validation time.
func NewInterpreter(h ports.Host, reg *registry.Registry, opts ...Option) *Interpreter {
	it := &Interpreter{
		host:     h,
		registry: reg,
		policy:   domain.DefaultRetryPolicy(),
		timeout:  60 * time.Second,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Execute validates the tree against the initial bindings, runs it, and
// returns the final variable scope. Any activity failure, unresolvable name or
// scope violation aborts the run.
func (it *Interpreter) Execute(ctx context.Context, root *dsl.Statement, vars map[string]any) (map[string]any, error) {
	lookup := func(name string) bool {
		_, ok := it.registry.Lookup(name)
		return ok
	}
	if err := dsl.Validate(root, vars, lookup); err != nil {
		return nil, err
	}

	scope := NewScope(vars)
	if err := it.exec(ctx, root, scope); err != nil {
		return nil, err
	}
	return scope.Snapshot(), nil
}

func (it *Interpreter) exec(ctx context.Context, stmt *dsl.Statement, scope *Scope) error {
	switch {
	case stmt.Activity != nil:
		return it.execActivity(ctx, stmt.Activity, scope)
	case stmt.Sequence != nil:
		return it.execSequence(ctx, stmt.Sequence, scope)
	case stmt.Parallel != nil:
		return it.execParallel(ctx, stmt.Parallel, scope)
	}
	return fmt.Errorf("runtime: empty statement")
}

// execActivity resolves arguments from the scope, suspends on the host call,
// and binds the result. Pure scope manipulation never suspends.
func (it *Interpreter) execActivity(ctx context.Context, inv *dsl.ActivityInvocation, scope *Scope) error {
	args := make([]any, len(inv.Arguments))
	for i, name := range inv.Arguments {
		value, ok := scope.Get(name)
		if !ok {
			return fmt.Errorf("runtime: activity %s: variable %q not defined", inv.Name, name)
		}
		args[i] = value
	}

	it.logger.Debug("executing activity", "activity", inv.Name, "result", inv.Result)
	result, err := it.host.ExecuteActivity(ctx, inv.Name, it.policy, it.timeout, args...)
	if err != nil {
		return err
	}

	if inv.Result != "" {
		scope.Set(inv.Result, result)
	}
	return nil
}

// execSequence runs elements strictly in order; the first failure aborts the
// remaining elements and propagates.
func (it *Interpreter) execSequence(ctx context.Context, seq *dsl.Sequence, scope *Scope) error {
	for _, el := range seq.Elements {
		if err := it.exec(ctx, el, scope); err != nil {
			return err
		}
	}
	return nil
}

// execParallel fans branches out concurrently and fails fast: the first branch
// error cancels the sibling context, and the error surfaces once every
// launched branch has settled.
func (it *Interpreter) execParallel(ctx context.Context, par *dsl.Parallel, scope *Scope) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, branch := range par.Branches {
		branch := branch
		g.Go(func() error {
			return it.exec(gctx, branch, scope)
		})
	}
	return g.Wait()
}
