package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/powersuspend/powersuspend-go/pkg/control"
	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
	"github.com/powersuspend/powersuspend-go/pkg/subscription"
)

// APIError is an error response returned by the server.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Client talks to a running daemon.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Attributes lists all control endpoints.
func (c *Client) Attributes(ctx context.Context) ([]control.EndpointInfo, error) {
	var out struct {
		Attributes []control.EndpointInfo `json:"attributes"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/attributes", "", &out); err != nil {
		return nil, err
	}
	return out.Attributes, nil
}

// Read returns the value of one endpoint.
func (c *Client) Read(ctx context.Context, name string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v1/attributes/"+url.PathEscape(name), "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// Write writes value to one endpoint.
func (c *Client) Write(ctx context.Context, name, value string) error {
	_, err := c.do(ctx, http.MethodPut, "/api/v1/attributes/"+url.PathEscape(name), value)
	return err
}

// Trigger invokes a hardware hook and reports whether the mode gate
// authorized it.
func (c *Client) Trigger(ctx context.Context, trigger powerstate.Trigger, state powerstate.State) (bool, error) {
	var source string
	switch trigger {
	case powerstate.TriggerAutosleep:
		source = "autosleep"
	case powerstate.TriggerPanel:
		source = "panel"
	default:
		return false, fmt.Errorf("trigger %s has no hook", trigger)
	}
	var out struct {
		Authorized bool `json:"authorized"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/triggers/"+source, fmt.Sprint(uint8(state)), &out); err != nil {
		return false, err
	}
	return out.Authorized, nil
}

// Handlers lists registered handlers.
func (c *Client) Handlers(ctx context.Context) ([]subscription.Info, error) {
	var out struct {
		Handlers []subscription.Info `json:"handlers"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/handlers", "", &out); err != nil {
		return nil, err
	}
	return out.Handlers, nil
}

// Watch streams notifications to fn until ctx is done or the server
// closes the stream.
func (c *Client) Watch(ctx context.Context, fn func(Notification)) error {
	wsURL, err := toWebsocketURL(c.baseURL + "/api/v1/events")
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var n Notification
		if err := conn.ReadJSON(&n); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		fn(n)
	}
}

// WatchReconnect runs Watch until ctx is done, reconnecting with
// exponential backoff. onDisconnect, if set, is called with each session
// error and the delay before the next attempt.
func (c *Client) WatchReconnect(ctx context.Context, fn func(Notification), onDisconnect func(err error, delay time.Duration)) error {
	backoff := NewBackoff(InitialBackoff, MaxBackoff, JitterFactor)
	for {
		connected := false
		err := c.Watch(ctx, func(n Notification) {
			if !connected {
				connected = true
				backoff.Reset()
			}
			fn(n)
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := backoff.Next()
		if onDisconnect != nil {
			onDisconnect(err, delay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) doJSON(ctx context.Context, method, path, body string, out any) error {
	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, body string) ([]byte, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "text/plain")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error APIError `json:"error"`
		}
		if json.Unmarshal(data, &envelope) != nil || envelope.Error.Code == "" {
			return nil, &APIError{Status: resp.StatusCode, Code: "http_error", Message: strings.TrimSpace(string(data))}
		}
		envelope.Error.Status = resp.StatusCode
		return nil, &envelope.Error
	}
	return data, nil
}

func toWebsocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	return u.String(), nil
}
