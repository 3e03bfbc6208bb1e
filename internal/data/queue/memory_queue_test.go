package queue

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_EnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue[string](2)
	t.Cleanup(func() { _ = q.Close() })

	assert.Equal(t, EnqueueAccepted, q.Enqueue("file:///a.c"))
	assert.Equal(t, EnqueueAccepted, q.Enqueue("file:///b.c"))
	assert.Equal(t, 2, q.Len())

	batch, err := q.DequeueBatch(context.Background(), 2, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///a.c", "file:///b.c"}, batch)
	assert.Equal(t, 0, q.Len())
}

func TestMemoryQueue_FullQueueDrops(t *testing.T) {
	q := NewMemoryQueue[int](1)
	t.Cleanup(func() { _ = q.Close() })

	assert.Equal(t, EnqueueAccepted, q.Enqueue(1))
	assert.Equal(t, EnqueueDropped, q.Enqueue(2))
}

func TestMemoryQueue_EmptyWaitTimesOut(t *testing.T) {
	q := NewMemoryQueue[int](1)
	t.Cleanup(func() { _ = q.Close() })

	batch, err := q.DequeueBatch(context.Background(), 4, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, batch)

	batch, err = q.DequeueBatch(context.Background(), 4, 0)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestMemoryQueue_CanceledContext(t *testing.T) {
	q := NewMemoryQueue[int](1)
	t.Cleanup(func() { _ = q.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.DequeueBatch(ctx, 1, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryQueue_CloseReturnsEOFWhenDrained(t *testing.T) {
	q := NewMemoryQueue[int](1)
	require.Equal(t, EnqueueAccepted, q.Enqueue(7))
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.Equal(t, EnqueueDropped, q.Enqueue(8), "closed queue drops")

	batch, err := q.DequeueBatch(context.Background(), 2, 0)
	assert.Equal(t, []int{7}, batch)
	assert.ErrorIs(t, err, io.EOF)

	batch, err = q.DequeueBatch(context.Background(), 1, 0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, batch)
}
