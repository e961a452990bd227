// Package conveyor is a workflow orchestration core: saga-style workflows over
// retryable activities, a declarative activity-graph interpreter, and a
// durable Redis-backed result stream for pushing incremental output to
// consumers while a run is still executing.
//
// The Orchestrator facade wires the activity registry, the in-process
// durable-execution host and the interpreter; pkg/queue provides the result
// stream; internal workflows implement the account transfer saga and the
// streaming translate pipeline.
package conveyor
