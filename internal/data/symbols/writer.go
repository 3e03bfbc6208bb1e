package symbols

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"cstyle/internal/data/queue"
	"cstyle/internal/shared/observability"
)

const (
	writerBatchSize = 32
	writerWait      = 250 * time.Millisecond
)

type update struct {
	uri     string
	entries []Entry
}

// Writer applies index updates off the request path. Updates for the same
// document within one batch collapse to the newest.
type Writer struct {
	store  *Store
	queue  *queue.MemoryQueue[update]
	logger *slog.Logger
}

func NewWriter(store *Store, capacity int, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:  store,
		queue:  queue.NewMemoryQueue[update](capacity),
		logger: logger,
	}
}

// Enqueue schedules entries to replace the indexed rows of uri. It reports
// false when the queue is full or closed.
func (w *Writer) Enqueue(uri string, entries []Entry) bool {
	if w.queue.Enqueue(update{uri: uri, entries: entries}) == queue.EnqueueDropped {
		observability.SymbolIndexWritesTotal.WithLabelValues("dropped").Inc()
		return false
	}
	return true
}

// Run writes batches until the queue is closed or ctx ends. Whatever is
// still queued when ctx ends is flushed before returning.
func (w *Writer) Run(ctx context.Context) error {
	for {
		batch, err := w.queue.DequeueBatch(ctx, writerBatchSize, writerWait)
		if len(batch) > 0 {
			w.flush(context.WithoutCancel(ctx), batch)
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			_ = w.queue.Close()
			return w.drain(context.WithoutCancel(ctx))
		default:
			return err
		}
	}
}

func (w *Writer) drain(ctx context.Context) error {
	for {
		batch, err := w.queue.DequeueBatch(ctx, writerBatchSize, 0)
		if len(batch) > 0 {
			w.flush(ctx, batch)
		}
		if err != nil || len(batch) == 0 {
			return nil
		}
	}
}

func (w *Writer) flush(ctx context.Context, batch []update) {
	latest := make(map[string]int, len(batch))
	order := make([]string, 0, len(batch))
	for i, u := range batch {
		if _, seen := latest[u.uri]; !seen {
			order = append(order, u.uri)
		}
		latest[u.uri] = i
	}
	for _, uri := range order {
		u := batch[latest[uri]]
		written, err := w.store.Replace(ctx, u.uri, u.entries)
		if err != nil {
			w.logger.Warn("symbol index update failed", "uri", u.uri, "error", err)
			continue
		}
		if written {
			w.logger.Debug("symbol index updated", "uri", u.uri)
		}
	}
}

// Pending is the number of queued updates.
func (w *Writer) Pending() int { return w.queue.Len() }

// Close stops accepting updates. Run returns once the backlog is written.
func (w *Writer) Close() error { return w.queue.Close() }
