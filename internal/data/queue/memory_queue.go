// Package queue provides the bounded in-memory queue that decouples request
// handling from slower background writes.
package queue

import (
	"context"
	"io"
	"sync"
	"time"
)

type EnqueueResult string

const (
	EnqueueAccepted EnqueueResult = "accepted"
	EnqueueDropped  EnqueueResult = "dropped"
)

// MemoryQueue is a bounded FIFO. Enqueue never blocks: a full or closed
// queue drops the item.
type MemoryQueue[T any] struct {
	ch     chan T
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue[T any](capacity int) *MemoryQueue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue[T]{ch: make(chan T, capacity)}
}

func (q *MemoryQueue[T]) Enqueue(item T) EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return EnqueueDropped
	}
	select {
	case q.ch <- item:
		return EnqueueAccepted
	default:
		return EnqueueDropped
	}
}

// DequeueBatch waits up to wait for a first item, then takes whatever else
// is ready, up to maxItems. It returns io.EOF once the queue is closed and
// drained, possibly together with a final batch.
func (q *MemoryQueue[T]) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]T, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	batch := make([]T, 0, maxItems)

	first, ok, err := q.first(ctx, wait)
	if err != nil || !ok {
		return nil, err
	}
	batch = append(batch, first)

	for len(batch) < maxItems {
		select {
		case item, ok := <-q.ch:
			if !ok {
				return batch, io.EOF
			}
			batch = append(batch, item)
		default:
			return batch, nil
		}
	}

	return batch, nil
}

func (q *MemoryQueue[T]) first(ctx context.Context, wait time.Duration) (T, bool, error) {
	var zero T
	if wait <= 0 {
		select {
		case item, ok := <-q.ch:
			if !ok {
				return zero, false, io.EOF
			}
			return item, true, nil
		case <-ctx.Done():
			return zero, false, ctx.Err()
		default:
			return zero, false, nil
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case item, ok := <-q.ch:
		if !ok {
			return zero, false, io.EOF
		}
		return item, true, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case <-timer.C:
		return zero, false, nil
	}
}

func (q *MemoryQueue[T]) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue[T]) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
