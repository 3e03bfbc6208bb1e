package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Handler serves one request method. A *protocol.ResponseError return is
// sent to the client as is.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Registry maps request methods to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	order    []string
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		order:    make([]string, 0),
	}
}

func (r *Registry) Register(method string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler is required")
	}
	if method == "" {
		return fmt.Errorf("method name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[method]; exists {
		return fmt.Errorf("method already registered: %s", method)
	}
	r.handlers[method] = handler
	r.order = append(r.order, method)
	return nil
}

func (r *Registry) HandlerFor(method string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[method]
	return h, ok
}

// Methods lists registered methods in registration order.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
