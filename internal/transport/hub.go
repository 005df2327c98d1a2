// Package transport exposes a table's engine.Engine over WebSocket: it
// translates engine.Event values into JSON envelopes broadcast to
// connected players, and inbound command frames into
// engine.Engine.HandleAction calls.
package transport

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-engine/internal/engine"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
)

// Envelope is the wire shape for every message, in either direction.
// Data carries a type-specific payload, decoded after Type is known.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func newEnvelope(kind string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: kind, Data: data, Timestamp: time.Now()}, nil
}

// ActionCommand is the inbound payload a client sends to act on its
// turn.
type ActionCommand struct {
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Hub owns one table's engine and every WebSocket connection attached
// to it. Its EventSink method, once passed to engine.WithEventSink,
// fans every event out to the connections it knows about.
type Hub struct {
	engine   *engine.Engine
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[*connection]struct{}
}

// NewHub creates a Hub with no engine attached yet. Pass h.EventSink to
// engine.WithEventSink when constructing the engine, then call
// h.Attach(e) so the hub can route inbound commands back into it.
func NewHub(logger *log.Logger) *Hub {
	h := &Hub{
		logger: logger.WithPrefix("transport"),
		conns:  make(map[*connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	return h
}

// Attach binds the hub to an engine instance so inbound commands reach
// it; it does not register the hub for events (see EventSink). Call
// once, before serving any connections.
func (h *Hub) Attach(e *engine.Engine) {
	h.engine = e
}

// EventSink is passed to engine.WithEventSink to route every emitted
// event to this hub's connections.
func (h *Hub) EventSink(ev engine.Event) {
	h.broadcast(ev)
}

// ServeHTTP upgrades the request to a WebSocket and runs the
// connection until it closes or the request context is canceled.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("upgrade failed", "error", err)
		return
	}

	c := newConnection(conn, h)
	h.register(c)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error { return c.writePump(ctx) })
	g.Go(func() error { return c.readPump(ctx) })

	if err := g.Wait(); err != nil {
		h.logger.Debug("connection ended", "error", err)
	}
	h.unregister(c)
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) connectionFor(playerID string) *connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		if c.playerID() == playerID {
			return c
		}
	}
	return nil
}

// broadcast fans an engine event out as a JSON envelope. HoleCardsEvent
// is private: it is routed only to the connection bound to the named
// player. Every other event goes to every connected player.
func (h *Hub) broadcast(ev engine.Event) {
	env, err := envelopeFor(ev)
	if err != nil {
		h.logger.Error("failed to encode event", "error", err)
		return
	}

	if hc, ok := ev.(engine.HoleCardsEvent); ok {
		if c := h.connectionFor(hc.PlayerID); c != nil {
			c.trySend(env)
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.trySend(env)
	}
}

// handleAction decodes an inbound ActionCommand and applies it through
// the engine on behalf of playerID.
func (h *Hub) handleAction(playerID string, raw json.RawMessage) {
	var cmd ActionCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		h.logger.Warn("malformed action command", "player", playerID, "error", err)
		return
	}
	action, ok := parseAction(cmd.Action)
	if !ok {
		h.logger.Warn("unknown action", "player", playerID, "action", cmd.Action)
		return
	}
	if _, err := h.engine.HandleAction(playerID, action, cmd.Amount); err != nil {
		h.logger.Warn("action rejected", "player", playerID, "action", cmd.Action, "error", err)
	}
}

func parseAction(s string) (engine.Action, bool) {
	switch s {
	case "fold":
		return engine.Fold, true
	case "check":
		return engine.Check, true
	case "call":
		return engine.Call, true
	case "raise":
		return engine.Raise, true
	case "all-in":
		return engine.AllIn, true
	default:
		return 0, false
	}
}
