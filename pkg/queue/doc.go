// Package queue implements the durable result stream: a per-run, ordered,
// at-least-once message list on a shared Redis broker with explicit completion
// and cooperative cancellation. Long-running workflows publish incremental
// results through it; consumers (e.g. a server-sent-events handler) block on
// the stream independently until a terminal message arrives.
package queue
