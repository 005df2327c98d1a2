package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/holdem-engine/internal/engine"
)

// connection wraps one WebSocket and the single player it is bound to
// once a join command is accepted. Writes go through a buffered
// channel so a slow reader never blocks the engine's emitting
// goroutine.
type connection struct {
	conn *websocket.Conn
	hub  *Hub

	send chan *Envelope

	mu   sync.RWMutex
	id   string
	once sync.Once
}

func newConnection(conn *websocket.Conn, hub *Hub) *connection {
	return &connection{
		conn: conn,
		hub:  hub,
		send: make(chan *Envelope, sendBuffer),
	}
}

func (c *connection) playerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *connection) setPlayerID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
}

func (c *connection) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// trySend queues an envelope for delivery, dropping it rather than
// blocking if the connection's buffer is full (a stuck client must
// never stall the table).
func (c *connection) trySend(env *Envelope) {
	defer func() { recover() }() // send on closed channel during shutdown
	select {
	case c.send <- env:
	default:
		c.hub.logger.Warn("dropping message to slow connection", "player", c.playerID())
	}
}

func (c *connection) readPump(ctx context.Context) error {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return err
		}
		c.handle(env)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (c *connection) handle(env Envelope) {
	switch env.Type {
	case "join":
		var join JoinCommand
		if err := json.Unmarshal(env.Data, &join); err != nil {
			c.sendError("invalid_join", err.Error())
			return
		}
		// A negative seat asks for the lowest-numbered open seat.
		seat := join.Seat
		if seat < 0 {
			seat = 0
		}
		err := c.hub.engine.AddPlayer(join.PlayerID, join.Name, seat)
		for join.Seat < 0 && errors.Is(err, engine.ErrSeatTaken) {
			seat++
			err = c.hub.engine.AddPlayer(join.PlayerID, join.Name, seat)
		}
		if err != nil {
			c.sendError("join_rejected", err.Error())
			return
		}
		c.setPlayerID(join.PlayerID)
		c.hub.engine.SetConnected(join.PlayerID, true)

	case "action":
		if c.playerID() == "" {
			c.sendError("not_joined", "must join before acting")
			return
		}
		c.hub.handleAction(c.playerID(), env.Data)

	default:
		c.sendError("unknown_message_type", env.Type)
	}
}

func (c *connection) sendError(code, message string) {
	env, err := newEnvelope("error", ErrorData{Code: code, Message: message})
	if err != nil {
		return
	}
	c.trySend(env)
}

func (c *connection) writePump(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return nil
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return err
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}

		case <-ctx.Done():
			if id := c.playerID(); id != "" {
				c.hub.engine.SetConnected(id, false)
			}
			return ctx.Err()
		}
	}
}

// JoinCommand is the inbound payload for the "join" message type: a
// player takes a seat at the table.
type JoinCommand struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Seat     int    `json:"seat"`
}

// ErrorData is the outbound payload for the "error" message type.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
