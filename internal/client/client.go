// Package client is the WebSocket counterpart of internal/transport: it
// dials a table's Hub, decodes the envelope stream into a channel the
// caller can range over, and encodes join/action commands back.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 54 * time.Second
)

// Envelope mirrors transport.Envelope: the wire shape of every message
// in either direction.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// JoinCommand mirrors transport.JoinCommand.
type JoinCommand struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
}

// ActionCommand mirrors transport.ActionCommand.
type ActionCommand struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Client is a connection to one table's Hub.
type Client struct {
	conn   *websocket.Conn
	send   chan *Envelope
	events chan Envelope
	logger *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New dials tableURL (an "ws(s)://host:port/ws/<table>" address) and
// starts its read/write pumps. The caller ranges over Events() for
// incoming envelopes and calls Join/Act to send commands.
func New(tableURL string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(tableURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		conn:   conn,
		send:   make(chan *Envelope, 256),
		events: make(chan Envelope, 256),
		logger: logger.WithPrefix("client"),
		ctx:    ctx,
		cancel: cancel,
	}

	go c.readPump()
	go c.writePump()

	return c, nil
}

// Events returns the channel of envelopes received from the table.
// It is closed when the connection ends.
func (c *Client) Events() <-chan Envelope {
	return c.events
}

// Join sends a join command claiming a seat at the table.
func (c *Client) Join(playerID, name string, seat int) error {
	return c.sendEnvelope("join", JoinCommand{PlayerID: playerID, Name: name, Seat: seat})
}

// Act sends an action command on the caller's own turn.
func (c *Client) Act(action string, amount int) error {
	return c.sendEnvelope("action", ActionCommand{Action: action, Amount: amount})
}

func (c *Client) sendEnvelope(kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := &Envelope{Type: kind, Data: data, Timestamp: time.Now()}
	select {
	case c.send <- env:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("client: send buffer full")
	}
}

// Close ends the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readPump() {
	defer close(c.events)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}

		select {
		case c.events <- env:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
