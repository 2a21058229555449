// Package realtime implements the session transport over a websocket
// carrying JSON frames.
package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/codes"

	"github.com/parley-ai/parley-core/core/transport"
)

const defaultEventBufferSize = 64

// Client is a websocket-backed transport. A Client is good for one
// connection; Connect must be called exactly once before any send.
type Client struct {
	endpoint string
	dialer   *websocket.Dialer

	connMu sync.Mutex
	conn   *websocket.Conn

	events    chan transport.Event
	closeOnce sync.Once
}

type Option func(*Client)

// WithEndpoint overrides the websocket endpoint the client dials.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithDialer overrides the websocket dialer, mostly for tests.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = dialer }
}

func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		events:   make(chan transport.Event, defaultEventBufferSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Connect(ctx context.Context, credential transport.Credential) error {
	ctx, span := tracer.Start(ctx, "connect realtime transport")
	defer span.End()

	if credential.Expired() {
		err := fmt.Errorf("credential expired before connect")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid realtime endpoint: %w", err)
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint.String(),
		http.Header{"Authorization": {"Bearer " + credential.Token}})
	if err != nil {
		err = fmt.Errorf("failed to open socket connection to realtime peer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.readAndProcessFrames(conn)
	return nil
}

func (c *Client) Events() <-chan transport.Event { return c.events }

func (c *Client) readAndProcessFrames(conn *websocket.Conn) {
	defer c.closeEvents()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Failed to read realtime websocket frame", "error", err)
				c.events <- transport.ErrorEvent{
					Code:    transport.ErrorCodeConnection,
					Message: err.Error(),
				}
			}

			c.connMu.Lock()
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()
			return
		}
		if msgType == websocket.BinaryMessage {
			// Audio frames are played elsewhere; only JSON frames carry
			// session events.
			continue
		}

		event, err := decodeWireEvent(msg)
		if err != nil {
			logger.Warn("Failed to decode realtime frame", "error", err)
			continue
		}
		c.events <- event
	}
}

func (c *Client) closeEvents() {
	c.closeOnce.Do(func() { close(c.events) })
}

func (c *Client) writeJSON(payload any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("realtime transport is not connected")
	}
	if err := c.conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("failed to write to realtime peer: %w", err)
	}
	return nil
}

func (c *Client) SendMessage(text string) error {
	return c.writeJSON(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "input_text.create", Text: text})
}

func (c *Client) SendSilentContext(text string) error {
	return c.writeJSON(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "context.create", Text: text})
}

func (c *Client) Interrupt() error {
	return c.writeJSON(struct {
		Type string `json:"type"`
	}{Type: "response.interrupt"})
}

func (c *Client) Approve(item any) error {
	handle, ok := item.(approvalItem)
	if !ok {
		return fmt.Errorf("unexpected approval item type: %T", item)
	}
	return c.writeJSON(struct {
		Type    string `json:"type"`
		CallID  string `json:"call_id"`
		Approve bool   `json:"approve"`
	}{Type: "tool.approval", CallID: handle.CallID, Approve: true})
}

func (c *Client) Reject(item any) error {
	handle, ok := item.(approvalItem)
	if !ok {
		return fmt.Errorf("unexpected approval item type: %T", item)
	}
	return c.writeJSON(struct {
		Type    string `json:"type"`
		CallID  string `json:"call_id"`
		Approve bool   `json:"approve"`
	}{Type: "tool.approval", CallID: handle.CallID, Approve: false})
}

func (c *Client) Close() error {
	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	if conn == nil {
		return nil
	}

	// Best effort close handshake; the read loop shuts the event channel.
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}
