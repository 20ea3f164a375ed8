package event

import (
	"slices"
	"sync"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
)

// HandlerRegistry maps event types to handlers. Handlers registered without
// types are wildcards and receive every event after the typed handlers.
type HandlerRegistry struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	wildcard []shared.EventHandler
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{byType: make(map[string][]shared.EventHandler)}
}

// Register subscribes handler to eventTypes, or to everything when none are
// given. A handler is stored at most once per type.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(eventTypes) == 0 {
		r.wildcard = addOnce(r.wildcard, handler)
		return
	}
	for _, eventType := range eventTypes {
		r.byType[eventType] = addOnce(r.byType[eventType], handler)
	}
}

// Unregister removes handler from every type and from the wildcards
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	isTarget := func(h shared.EventHandler) bool { return h == handler }
	r.wildcard = slices.DeleteFunc(r.wildcard, isTarget)
	for eventType, handlers := range r.byType {
		if remaining := slices.DeleteFunc(handlers, isTarget); len(remaining) > 0 {
			r.byType[eventType] = remaining
		} else {
			delete(r.byType, eventType)
		}
	}
}

// GetHandlers returns a snapshot safe to iterate without the lock
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Concat(r.byType[eventType], r.wildcard)
}

func addOnce(handlers []shared.EventHandler, handler shared.EventHandler) []shared.EventHandler {
	if slices.Contains(handlers, handler) {
		return handlers
	}
	return append(handlers, handler)
}
