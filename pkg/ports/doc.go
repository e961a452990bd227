// Package ports defines the boundary interfaces of the orchestration core:
// account and document storage, and the durable-execution host workflows run
// on. Adapters implement them; workflows and services depend only on them.
package ports
