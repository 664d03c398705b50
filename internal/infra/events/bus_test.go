package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBus_PublishDispatchesInOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var seen []string
	bus.Register(NewHandlerFunc([]string{TicketCreatedType}, func(e Event) error {
		seen = append(seen, "first")
		return nil
	}))
	bus.Register(NewHandlerFunc([]string{TicketCreatedType}, func(e Event) error {
		seen = append(seen, "second")
		return nil
	}))

	bus.Publish(NewTicketCreatedEvent(7, "user-1", "printer offline", 0))

	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestBus_HandlerErrorIsolation(t *testing.T) {
	bus := NewBus(zap.NewNop())

	called := false
	bus.Register(NewHandlerFunc([]string{TicketClosedType}, func(e Event) error {
		return errors.New("boom")
	}))
	bus.Register(NewHandlerFunc([]string{TicketClosedType}, func(e Event) error {
		called = true
		return nil
	}))

	bus.Publish(NewTicketClosedEvent(7, "user-1"))

	assert.True(t, called, "a failing handler must not block the rest")
}

func TestBus_OnlyMatchingHandlersRun(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var created, updated int
	bus.Register(NewHandlerFunc([]string{TicketCreatedType}, func(e Event) error {
		created++
		return nil
	}))
	bus.Register(NewHandlerFunc([]string{TicketUpdatedType}, func(e Event) error {
		updated++
		return nil
	}))

	bus.Publish(NewTicketUpdatedEvent(7, "user-1"))

	assert.Equal(t, 0, created)
	assert.Equal(t, 1, updated)
}

func TestBus_PublishWithoutHandlers(t *testing.T) {
	bus := NewBus(nil)

	// Must not panic.
	bus.Publish(NewTicketCreatedEvent(7, "user-1", "subject", 3))
}

func TestTicketEvents_Envelope(t *testing.T) {
	e := NewTicketCreatedEvent(42, "user-9", "vpn broken", 3)

	require.NotEqual(t, "", e.EventID().String())
	assert.Equal(t, TicketCreatedType, e.EventType())
	assert.Equal(t, "42", e.AggregateID())
	assert.Equal(t, "Ticket", e.AggregateType())
	assert.False(t, e.OccurredAt().IsZero())
}

func TestBus_PublishAll(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var count int
	bus.Register(NewHandlerFunc([]string{TicketCreatedType, TicketClosedType}, func(e Event) error {
		count++
		return nil
	}))

	bus.PublishAll([]Event{
		NewTicketCreatedEvent(1, "user-1", "a", 0),
		NewTicketClosedEvent(1, "user-1"),
	})

	assert.Equal(t, 2, count)
}
