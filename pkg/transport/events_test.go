package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/triggercontext"
)

func TestEventClientOverflow(t *testing.T) {
	c := &eventClient{
		send:     make(chan Notification, 1),
		overflow: make(chan struct{}),
	}

	c.push(Notification{Generation: 1})
	select {
	case <-c.overflow:
		t.Fatal("overflow signalled with room in the queue")
	default:
	}

	c.push(Notification{Generation: 2})
	c.push(Notification{Generation: 3})

	select {
	case <-c.overflow:
	default:
		t.Fatal("overflow not signalled")
	}
	assert.Equal(t, uint64(1), (<-c.send).Generation)
}

func TestNewNotification(t *testing.T) {
	ctx := triggercontext.ContextWithTransition(context.Background(), triggercontext.Transition{
		Generation: 7,
		Trigger:    powerstate.TriggerPanel,
		State:      powerstate.Active,
	})

	n := newNotification(ctx, powerstate.Active)
	assert.Equal(t, DirectionSuspend, n.Direction)
	assert.Equal(t, uint8(1), n.State)
	assert.Equal(t, uint64(7), n.Generation)
	assert.Equal(t, "PANEL", n.Trigger)

	n = newNotification(context.Background(), powerstate.Inactive)
	assert.Equal(t, DirectionResume, n.Direction)
	assert.Zero(t, n.Generation)
	assert.Empty(t, n.Trigger)
}

func TestToWebsocketURL(t *testing.T) {
	u, err := toWebsocketURL("http://localhost:8080/api/v1/events")
	assert.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/v1/events", u)

	u, err = toWebsocketURL("https://host/api/v1/events")
	assert.NoError(t, err)
	assert.Equal(t, "wss://host/api/v1/events", u)
}
