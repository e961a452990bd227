package conveyor

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/calvora/conveyor/internal/host"
	"github.com/calvora/conveyor/internal/observability"
	"github.com/calvora/conveyor/internal/runtime"
	"github.com/calvora/conveyor/pkg/dsl"
	"github.com/calvora/conveyor/pkg/ports"
	"github.com/calvora/conveyor/pkg/registry"
)

// Orchestrator is the high-level entry point for embedding the orchestration
// core: an activity registry, the in-process durable-execution host, and the
// graph interpreter wired together.
type Orchestrator struct {
	registry    *registry.Registry
	host        *host.Host
	interpreter *runtime.Interpreter
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger shared by the host and interpreter.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an orchestrator. Metrics are registered on reg; pass a fresh
// prometheus.NewRegistry() when embedding more than one orchestrator in a
// process.
func New(reg prometheus.Registerer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry.New(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.metrics = observability.New(reg)
	o.host = host.New(o.registry,
		host.WithLogger(o.logger),
		host.WithMetrics(o.metrics),
	)
	o.interpreter = runtime.NewInterpreter(o.host, o.registry,
		runtime.WithLogger(o.logger),
	)
	return o
}

// Registry exposes the activity registry for startup wiring.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

// Host exposes the durable-execution host workflows run on.
func (o *Orchestrator) Host() ports.Host {
	return o.host
}

// Metrics exposes the orchestration counters for wiring into workflows.
func (o *Orchestrator) Metrics() *observability.Metrics {
	return o.metrics
}

// RunGraph validates and executes an activity graph against the initial
// variable bindings, returning the final scope.
func (o *Orchestrator) RunGraph(ctx context.Context, root *dsl.Statement, vars map[string]any) (map[string]any, error) {
	return o.interpreter.Execute(ctx, root, vars)
}
