package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/subscription"
	"github.com/powersuspend/powersuspend-go/pkg/triggercontext"
)

const (
	// DefaultEventBuffer is the per-connection notification queue size.
	DefaultEventBuffer = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	closeReasonOverflow = "notification queue overflow"
)

// Direction names used in notifications.
const (
	DirectionSuspend = "suspend"
	DirectionResume  = "resume"
)

// Notification is one dispatch pass as seen by a websocket subscriber.
type Notification struct {
	Direction  string    `json:"direction"`
	State      uint8     `json:"state"`
	Generation uint64    `json:"generation"`
	Trigger    string    `json:"trigger"`
	Timestamp  time.Time `json:"timestamp"`
}

func newNotification(ctx context.Context, state powerstate.State) Notification {
	n := Notification{
		Direction: DirectionResume,
		State:     uint8(state),
		Timestamp: time.Now().UTC(),
	}
	if state == powerstate.Active {
		n.Direction = DirectionSuspend
	}
	if tr, ok := triggercontext.TransitionFromContext(ctx); ok {
		n.Generation = tr.Generation
		n.Trigger = tr.Trigger.String()
	}
	return n
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// eventClient is one websocket subscriber.
type eventClient struct {
	conn     *websocket.Conn
	send     chan Notification
	overflow chan struct{}
	once     sync.Once
}

// push queues n without blocking. A full queue marks the client for
// disconnection.
func (c *eventClient) push(n Notification) {
	select {
	case c.send <- n:
	default:
		c.once.Do(func() { close(c.overflow) })
	}
}

func (c *eventClient) handler(name string) *subscription.Handler {
	return &subscription.Handler{
		Name: name,
		Suspend: func(ctx context.Context) error {
			c.push(newNotification(ctx, powerstate.Active))
			return nil
		},
		Resume: func(ctx context.Context) error {
			c.push(newNotification(ctx, powerstate.Inactive))
			return nil
		},
	}
}

// Events upgrades the request to a websocket and streams notifications
// until the client goes away or falls behind.
func (a *API) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	buffer := a.eventBuffer
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	client := &eventClient{
		conn:     conn,
		send:     make(chan Notification, buffer),
		overflow: make(chan struct{}),
	}

	id := a.coordinator.Subscribe(client.handler("ws:" + r.RemoteAddr))
	a.logger.Info("event subscriber connected", "id", id.String(), "remote", r.RemoteAddr)

	readDone := make(chan struct{})
	go client.readLoop(readDone)

	reason := client.writeLoop(r.Context(), readDone)

	a.coordinator.Unsubscribe(id)
	_ = conn.Close()
	a.logger.Info("event subscriber disconnected", "id", id.String(), "reason", reason)
}

// readLoop discards client frames and reports when the peer closes.
func (c *eventClient) readLoop(done chan<- struct{}) {
	defer close(done)
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *eventClient) writeLoop(ctx context.Context, readDone <-chan struct{}) string {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case n := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(n); err != nil {
				return "write failed"
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return "ping failed"
			}
		case <-c.overflow:
			msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, closeReasonOverflow)
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return "overflow"
		case <-readDone:
			return "closed by peer"
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return "shutdown"
		}
	}
}
