// Package runtime evaluates activity graphs: sequence and parallel statements
// over a shared per-run variable scope, with activities dispatched by name
// through the durable-execution host.
package runtime
