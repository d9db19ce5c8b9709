package router

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/wdlgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	actionEvent = "action"
	statusEvent = "status"
)

// SocketIOOptions configures Dial.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Timeout bounds both the connection attempt and every single request.
	// Zero means 15 seconds for connecting and no limit per request.
	Timeout time.Duration
}

// SocketIOClient forwards actions to a router server over socket.io. Each
// request is emitted as an `action` event carrying a fresh id; the server
// answers with a `status` event echoing that id.
type SocketIOClient struct {
	io      *socket.Socket
	timeout time.Duration
	nextID  atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan Status
}

type actionRequest struct {
	ID     uint64 `json:"id"`
	Action Action `json:"action"`
	Target Target `json:"target"`
}

// DialSocketIO connects to the router and waits for the handshake.
func DialSocketIO(ctx context.Context, o SocketIOOptions) (*SocketIOClient, error) {
	logger := ctxlog.FromContext(ctx).With("router", "socketio", "url", o.URL)
	logger.Info("Connecting to router...")

	parsedURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse router URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	c := &SocketIOClient{
		io:      io,
		timeout: o.Timeout,
		pending: make(map[uint64]chan Status),
	}

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Router connection established.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		logger.Debug("Router connection failed.", "error", err)
		connectChan <- err
	})
	io.On(types.EventName(statusEvent), func(data ...any) {
		id, status, err := decodeStatus(data...)
		if err != nil {
			logger.Error("Discarding malformed router status", "error", err)
			return
		}
		if !c.resolve(id, status) {
			logger.Warn("Router status for unknown request", "id", id)
		}
	})

	io.Connect()

	connectTimeout := o.Timeout
	if connectTimeout <= 0 {
		connectTimeout = 15 * time.Second
	}
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected to router", "sid", io.Id())
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for router connection")
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for router connection", connectTimeout)
	}
}

func (c *SocketIOClient) Pickup(ctx context.Context, t Target) (Status, error) {
	return c.request(ctx, Pickup, t)
}

func (c *SocketIOClient) Drop(ctx context.Context, t Target) (Status, error) {
	return c.request(ctx, Drop, t)
}

func (c *SocketIOClient) Drive(ctx context.Context, t Target) (Status, error) {
	return c.request(ctx, Drive, t)
}

// Close disconnects from the router. Pending requests fail with their
// context.
func (c *SocketIOClient) Close() {
	c.io.Disconnect()
}

func (c *SocketIOClient) request(ctx context.Context, action Action, t Target) (Status, error) {
	logger := ctxlog.FromContext(ctx)
	if !c.io.Connected() {
		return 0, fmt.Errorf("router client is not connected")
	}

	id := c.nextID.Add(1)
	reply := c.await(id)
	defer c.forget(id)

	payload, err := toPayload(actionRequest{ID: id, Action: action, Target: t})
	if err != nil {
		return 0, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logger.Debug("Emitting router action.", "id", id, "action", action, "target", t.String())
	c.io.Emit(actionEvent, payload)

	select {
	case status := <-reply:
		logger.Debug("Router answered.", "id", id, "status", status.String())
		return status, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("waiting for router answer to %s: %w", action, ctx.Err())
	}
}

func (c *SocketIOClient) await(id uint64) <-chan Status {
	ch := make(chan Status, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *SocketIOClient) forget(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// resolve delivers status to the request waiting for id.
func (c *SocketIOClient) resolve(id uint64, status Status) bool {
	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	if ok {
		ch <- status
	}
	return ok
}

// toPayload turns v into the generic map the socket.io encoder expects.
func toPayload(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding router request: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encoding router request: %w", err)
	}
	return m, nil
}

// decodeStatus reads a `{id, status}` event payload.
func decodeStatus(data ...any) (uint64, Status, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("empty status event")
	}
	m, ok := data[0].(map[string]any)
	if !ok {
		return 0, 0, fmt.Errorf("status event payload is %T, not an object", data[0])
	}
	id, ok := m["id"].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("status event without numeric id")
	}
	raw, ok := m["status"].(float64)
	if !ok {
		return 0, 0, fmt.Errorf("status event without numeric status")
	}
	switch status := Status(raw); status {
	case Done, NoStationLeft:
		return uint64(id), status, nil
	default:
		return 0, 0, fmt.Errorf("unknown router status %v", raw)
	}
}
