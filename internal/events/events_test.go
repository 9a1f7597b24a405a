package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hoistdev/hoist/internal/logging"
)

func TestBus_EmitOrder(t *testing.T) {
	bus := NewBus(logging.Nop())

	var got []string
	bus.On(EventPluginLoaded, "first", func(p Payload) error {
		got = append(got, "first:"+p.Plugin)
		return nil
	})
	bus.On(EventPluginLoaded, "second", func(p Payload) error {
		got = append(got, "second:"+p.Plugin)
		return nil
	})

	bus.Emit(Payload{Event: EventPluginLoaded, Plugin: "a"})
	assert.Equal(t, []string{"first:a", "second:a"}, got)
}

func TestBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus(logging.Nop())

	called := false
	bus.On(EventLoadError, "bad", func(Payload) error { return errors.New("boom") })
	bus.On(EventLoadError, "good", func(Payload) error { called = true; return nil })

	bus.Emit(Payload{Event: EventLoadError})
	assert.True(t, called)
}

func TestBus_Off(t *testing.T) {
	bus := NewBus(logging.Nop())

	calls := 0
	bus.On(EventPluginFound, "h", func(Payload) error { calls++; return nil })
	bus.Emit(Payload{Event: EventPluginFound})
	bus.Off(EventPluginFound, "h")
	bus.Emit(Payload{Event: EventPluginFound})

	assert.Equal(t, 1, calls)
}

func TestBus_EmitNoHandlers(t *testing.T) {
	NewBus(logging.Nop()).Emit(Payload{Event: EventPluginUnloaded})
}
