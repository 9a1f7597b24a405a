// Package events provides a synchronous bus for plugin lifecycle events.
// The manager emits an event at each lifecycle transition; hosts subscribe
// to observe discovery and load/unload progress without polling.
package events

import (
	"sync"

	"github.com/hoistdev/hoist/internal/logging"
)

// Lifecycle event names.
const (
	EventPluginFound      = "plugin_found"
	EventPluginRegistered = "plugin_registered"
	EventPluginLoaded     = "plugin_loaded"
	EventPluginUnloaded   = "plugin_unloaded"
	EventLoadError        = "load_error"
	EventUnloadError      = "unload_error"
)

// Payload carries event data to subscribers.
type Payload struct {
	Event  string
	Plugin string
	Path   string
	Err    error
}

// Handler handles one lifecycle event. Handler errors are logged and do
// not stop other handlers.
type Handler func(p Payload) error

// Bus dispatches lifecycle events to named subscribers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewBus creates an event bus.
func NewBus(log *logging.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("events"),
	}
}

// On registers a handler for the given event under a name used for
// logging and removal.
func (b *Bus) On(event, name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], namedHandler{name: name, handler: handler})
}

// Off removes every handler registered under name for the event.
func (b *Bus) Off(event, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.handlers[event][:0]
	for _, h := range b.handlers[event] {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	b.handlers[event] = kept
}

// Emit dispatches the event synchronously, in registration order.
func (b *Bus) Emit(p Payload) {
	b.mu.RLock()
	handlers := make([]namedHandler, len(b.handlers[p.Event]))
	copy(handlers, b.handlers[p.Event])
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h.handler(p); err != nil {
			b.log.Error().Err(err).
				Str("event", p.Event).
				Str("handler", h.name).
				Msg("event handler failed")
		}
	}
}
