package queue

import "errors"

// ErrTimeout is returned when no message arrives within the listen timeout.
// It is an expected outcome for a consumer loop: the producer may still be
// running and the consumer may reconnect.
var ErrTimeout = errors.New("queue: no message received within timeout")

// ErrCancelled is returned when the run's cancellation marker is set, either
// to a producer attempting to publish or to a consumer waiting on the stream.
var ErrCancelled = errors.New("queue: cancelled")

// ErrDone is returned by Next once a terminal complete/exit message has been
// read. The stream is over; the terminal message itself is never yielded.
var ErrDone = errors.New("queue: stream complete")

// Error wraps an unexpected broker failure (connectivity, serialization).
// Timeouts and cancellations are not broker failures and use the sentinels.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "queue: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func brokerErr(op string, err error) error {
	return &Error{Op: op, Err: err}
}
