package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var received []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventTicketCreated, TicketID: "t1"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "t1", received[0].TicketID)
}

func TestDispatcherIgnoresOtherTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	called := false
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))
	assert.False(t, called)
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var order []string
	d.Subscribe(EventTicketRejected, func(context.Context, Event) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketRejected, func(context.Context, Event) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketRejected}))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestAllEventTypesCoversTicketStream(t *testing.T) {
	types := AllEventTypes()
	assert.Contains(t, types, EventTicketCreated)
	assert.Contains(t, types, EventTicketAssigned)
	assert.Contains(t, types, EventTicketRejected)
	assert.Contains(t, types, EventTicketStatusChanged)
	assert.Contains(t, types, EventCommentAdded)
}
