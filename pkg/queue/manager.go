package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Manager streams incremental results for one run through a shared Redis
// broker. Producers publish payloads and terminate the stream exactly once;
// consumers block on the stream independently, bounded by a timeout.
//
// Keys are namespaced per run: "queue:<runID>" is the ordered message list and
// "cancel:<runID>" is the cancellation marker. Delivery is at-least-once:
// a retried producer activity may publish a payload twice.
type Manager struct {
	client *backend.Client
	runID  string
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRunID pins the manager to an existing run instead of a fresh id.
func WithRunID(id string) Option {
	return func(m *Manager) {
		m.runID = id
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a manager from an existing Redis client. Without WithRunID a
// new run id is generated.
func New(client *backend.Client, opts ...Option) *Manager {
	m := &Manager{
		client: client,
		runID:  uuid.NewString(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunID returns the run this manager is bound to.
func (m *Manager) RunID() string {
	return m.runID
}

func (m *Manager) queueKey() string {
	return "queue:" + m.runID
}

func (m *Manager) cancelKey() string {
	return "cancel:" + m.runID
}

// Publish appends one payload to the run's stream. It fails with ErrCancelled,
// without appending, once the run has been cancelled; producers call this
// before every chunk so cancellation propagates between publishes.
func (m *Manager) Publish(ctx context.Context, data map[string]any) error {
	cancelled, err := m.cancelled(ctx)
	if err != nil {
		return err
	}
	if cancelled {
		return ErrCancelled
	}

	raw, err := Message{Data: data}.encode()
	if err != nil {
		return brokerErr("publish", err)
	}
	if err := m.client.RPush(ctx, m.queueKey(), raw).Err(); err != nil {
		return brokerErr("publish", err)
	}
	m.logger.Debug("published message", "run_id", m.runID)
	return nil
}

// MarkComplete appends the terminal complete message, schedules the backing
// list to expire, and clears any cancellation marker: a completed run is not
// also cancelled.
func (m *Manager) MarkComplete(ctx context.Context, expire time.Duration) error {
	raw, err := Message{Data: map[string]any{}, Status: StatusComplete}.encode()
	if err != nil {
		return brokerErr("mark complete", err)
	}
	pipe := m.client.Pipeline()
	pipe.RPush(ctx, m.queueKey(), raw)
	pipe.Expire(ctx, m.queueKey(), expire)
	pipe.Del(ctx, m.cancelKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return brokerErr("mark complete", err)
	}
	m.logger.Debug("marked complete", "run_id", m.runID, "expire", expire)
	return nil
}

// Cancel sets the durable cancellation marker and appends the terminal cancel
// message. Calling it after completion is safe: a consumer that already read a
// terminal message never observes the cancel.
func (m *Manager) Cancel(ctx context.Context) error {
	if err := m.client.Set(ctx, m.cancelKey(), "1", 0).Err(); err != nil {
		return brokerErr("cancel", err)
	}
	raw, err := Message{Data: map[string]any{}, Status: StatusCancel}.encode()
	if err != nil {
		return brokerErr("cancel", err)
	}
	if err := m.client.RPush(ctx, m.queueKey(), raw).Err(); err != nil {
		return brokerErr("cancel", err)
	}
	m.logger.Info("run cancelled", "run_id", m.runID)
	return nil
}

// IsCancelled reports whether the cancellation marker is set. Broker failures
// read as not-cancelled; producers learn about them on the next publish.
func (m *Manager) IsCancelled(ctx context.Context) bool {
	cancelled, err := m.cancelled(ctx)
	if err != nil {
		m.logger.Error("cancel check failed", "run_id", m.runID, "err", err)
		return false
	}
	return cancelled
}

func (m *Manager) cancelled(ctx context.Context) (bool, error) {
	n, err := m.client.Exists(ctx, m.cancelKey()).Result()
	if err != nil {
		return false, brokerErr("cancel check", err)
	}
	return n > 0, nil
}

// Next blocks up to timeout for the next payload. It returns ErrDone once the
// stream terminates with complete/exit, ErrCancelled when the run is cancelled
// (marker or terminal cancel message), and ErrTimeout when nothing arrived.
func (m *Manager) Next(ctx context.Context, timeout time.Duration) (map[string]any, error) {
	cancelled, err := m.cancelled(ctx)
	if err != nil {
		return nil, err
	}
	if cancelled {
		return nil, ErrCancelled
	}

	res, err := m.client.BLPop(ctx, timeout, m.queueKey()).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrTimeout
		}
		return nil, brokerErr("next", err)
	}

	msg, err := decodeMessage(res[1])
	if err != nil {
		return nil, brokerErr("next", err)
	}

	if msg.Status.Terminal() {
		m.logger.Info("stream finished", "run_id", m.runID, "status", string(msg.Status))
		if msg.Status == StatusCancel {
			return nil, ErrCancelled
		}
		return nil, ErrDone
	}
	return msg.Data, nil
}

// Listen yields payloads until the stream terminates. The message channel is
// closed on normal completion; ErrTimeout, ErrCancelled or a broker *Error
// arrive on the error channel (at most one), after which both channels close.
func (m *Manager) Listen(ctx context.Context, timeout time.Duration) (<-chan map[string]any, <-chan error) {
	msgs := make(chan map[string]any)
	errs := make(chan error, 1)

	go func() {
		defer close(msgs)
		defer close(errs)
		for {
			data, err := m.Next(ctx, timeout)
			if err != nil {
				if !errors.Is(err, ErrDone) {
					errs <- err
				}
				return
			}
			select {
			case msgs <- data:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return msgs, errs
}

// Clear deletes the run's messages and cancellation marker. Used for cleanup
// and test isolation.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.client.Del(ctx, m.queueKey(), m.cancelKey()).Err(); err != nil {
		return brokerErr("clear", err)
	}
	m.logger.Debug("cleared stream", "run_id", m.runID)
	return nil
}
