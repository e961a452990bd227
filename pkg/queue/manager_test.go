package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvora/conveyor/pkg/queue"
)

func newTestManager(t *testing.T) (*queue.Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return queue.New(client, queue.WithRunID("run-1")), mr
}

func TestManager_PublishNext_Ordering(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "hello"}))
	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "world"}))
	require.NoError(t, m.MarkComplete(ctx, time.Hour))

	first, err := m.Next(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello", first["chunk"])

	second, err := m.Next(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "world", second["chunk"])

	_, err = m.Next(ctx, time.Second)
	assert.ErrorIs(t, err, queue.ErrDone)
}

func TestManager_MarkComplete_Idempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.MarkComplete(ctx, time.Hour))
	require.NoError(t, m.MarkComplete(ctx, time.Hour))

	_, err := m.Next(ctx, time.Second)
	assert.ErrorIs(t, err, queue.ErrDone)
	_, err = m.Next(ctx, time.Second)
	assert.ErrorIs(t, err, queue.ErrDone)
}

func TestManager_MarkComplete_SetsExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.MarkComplete(ctx, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("queue:run-1"))
}

func TestManager_CancelBlocksPublish(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "before"}))
	require.NoError(t, m.Cancel(ctx))

	err := m.Publish(ctx, map[string]any{"chunk": "after"})
	assert.ErrorIs(t, err, queue.ErrCancelled)

	// only the pre-cancel chunk and the terminal cancel message were appended
	list, lerr := mr.List("queue:run-1")
	require.NoError(t, lerr)
	assert.Len(t, list, 2)
}

func TestManager_CancelObservedByConsumer(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "one"}))
	require.NoError(t, m.Cancel(ctx))

	assert.True(t, m.IsCancelled(ctx))
	_, err := m.Next(ctx, time.Second)
	assert.ErrorIs(t, err, queue.ErrCancelled)
}

func TestManager_CompleteClearsCancelMarker(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Cancel(ctx))
	require.NoError(t, m.MarkComplete(ctx, time.Hour))

	assert.False(t, m.IsCancelled(ctx))
}

func TestManager_Next_Timeout(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Next(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, queue.ErrTimeout)
}

func TestManager_Listen(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "a"}))
	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "b"}))
	require.NoError(t, m.MarkComplete(ctx, time.Hour))

	msgs, errs := m.Listen(ctx, time.Second)

	var got []string
	for msg := range msgs {
		got = append(got, msg["chunk"].(string))
	}
	assert.Equal(t, []string{"a", "b"}, got)
	assert.NoError(t, <-errs)
}

func TestManager_Listen_Cancelled(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Cancel(ctx))

	msgs, errs := m.Listen(ctx, time.Second)
	for range msgs {
		t.Fatal("no message expected on a cancelled run")
	}
	assert.ErrorIs(t, <-errs, queue.ErrCancelled)
}

func TestManager_Clear(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Publish(ctx, map[string]any{"chunk": "x"}))
	require.NoError(t, m.Cancel(ctx))
	require.NoError(t, m.Clear(ctx))

	assert.False(t, mr.Exists("queue:run-1"))
	assert.False(t, mr.Exists("cancel:run-1"))
}

func TestManager_GeneratesRunID(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := queue.New(client)
	b := queue.New(client)
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}
