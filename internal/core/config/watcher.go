package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cstyle/internal/shared/observability"
)

// Watcher calls back when a watched file changes. It watches the parent
// directories so atomic saves, which replace the file, are seen too.
type Watcher struct {
	paths    map[string]bool
	debounce time.Duration
	callback func(path string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher watches paths and calls callback once per burst of changes to
// one of them.
func NewWatcher(paths []string, debounce time.Duration, callback func(path string)) *Watcher {
	w := &Watcher{
		paths:    make(map[string]bool, len(paths)),
		debounce: debounce,
		callback: callback,
		timers:   make(map[string]*time.Timer),
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		w.paths[filepath.Clean(p)] = true
	}
	return w
}

// Run watches until ctx is done. Pending callbacks are cancelled on return.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	defer w.cancelTimers()

	dirs := map[string]bool{}
	for p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	slog.Info("watching files", "count", len(w.paths))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if abs, err := filepath.Abs(name); err == nil {
		name = abs
	}
	if !w.paths[name] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	observability.WatcherEventsTotal.Inc()

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[name]; ok {
		t.Stop()
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()
		slog.Info("watched file changed", "path", name)
		if w.callback != nil {
			w.callback(name)
		}
	})
}

func (w *Watcher) cancelTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for name, t := range w.timers {
		t.Stop()
		delete(w.timers, name)
	}
}
