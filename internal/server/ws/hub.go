// Package ws pushes market refresh events to dashboard clients over
// WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alanyoungcy/polymarketdash/internal/analytics"
	"github.com/alanyoungcy/polymarketdash/internal/domain"
	"github.com/alanyoungcy/polymarketdash/internal/metrics"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum size of an incoming message.
	maxMessageSize = 4096

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 64

	moversPreview = 5
)

// Event types pushed to clients. Clients may subscribe to a subset; "*"
// matches everything.
const (
	EventConnected        = "connected"
	EventMarketsRefreshed = "markets_refreshed"
	EventRefreshFailed    = "refresh_failed"
)

var defaultEvents = []string{EventMarketsRefreshed, EventRefreshFailed}

// envelope is the wire format of every pushed message.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// refreshedPayload summarises a new snapshot.
type refreshedPayload struct {
	FetchedAt   time.Time             `json:"fetchedAt"`
	MarketCount int                   `json:"marketCount"`
	Movers      domain.TopMovers      `json:"movers"`
	Feed        []domain.FeedItem     `json:"feed"`
	Categories  []domain.CategoryData `json:"categories"`
}

type failedPayload struct {
	Error       string `json:"error"`
	ServedStale bool   `json:"servedStale"`
}

// client represents a single WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	subs map[string]bool // subscribed event types
	mu   sync.RWMutex
}

// subscribeMsg is the JSON message a client sends to change subscriptions.
type subscribeMsg struct {
	Action string   `json:"action"` // "subscribe" or "unsubscribe"
	Events []string `json:"events"`
}

// broadcastMsg carries a message along with its event type so the hub can
// route it only to subscribed clients.
type broadcastMsg struct {
	event string
	data  []byte
}

// Hub manages the set of connected WebSocket clients and fans out refresh
// events from the market service.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan broadcastMsg
	register   chan *client
	unregister chan *client
	done       chan struct{}
	upgrader   websocket.Upgrader
	metrics    *metrics.Metrics
	mu         sync.RWMutex
	logger     *slog.Logger
	startedAt  time.Time
}

// NewHub creates a hub. allowedOrigins restricts the upgrade Origin header;
// an empty list allows every origin.
func NewHub(allowedOrigins []string, m *metrics.Metrics, logger *slog.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan broadcastMsg, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger.With(slog.String("component", "ws_hub")),
		startedAt:  time.Now().UTC(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Run starts the hub's main event loop. It should be called in a goroutine.
// It handles client registration, unregistration, and message broadcasting.
// The loop exits when the provided context is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.metrics.SetWSClients(0)
			return ctx.Err()

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSClients(n)
			h.logger.Info("ws: client connected", slog.Int("total_clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWSClients(n)
			h.logger.Info("ws: client disconnected", slog.Int("total_clients", n))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				if c.isSubscribed(msg.event) {
					select {
					case c.send <- msg.data:
					default:
						h.logger.Warn("ws: dropping message for slow client")
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishSnapshot announces a refreshed snapshot. Its signature matches
// service.SnapshotHook. It never blocks the caller.
func (h *Hub) PublishSnapshot(_ context.Context, snap domain.Snapshot) {
	h.publish(EventMarketsRefreshed, refreshedPayload{
		FetchedAt:   snap.FetchedAt,
		MarketCount: len(snap.Markets),
		Movers:      analytics.TopMovers(snap.Markets, moversPreview),
		Feed:        analytics.ActivityFeed(snap.Markets, analytics.DefaultFeedLimit),
		Categories:  analytics.CategoryBreakdown(snap.Markets),
	})
}

// PublishFailure announces a failed refresh. Its signature matches
// service.FailureHook.
func (h *Hub) PublishFailure(_ context.Context, err error, servedStale bool) {
	h.publish(EventRefreshFailed, failedPayload{Error: err.Error(), ServedStale: servedStale})
}

func (h *Hub) publish(event string, payload any) {
	data, err := json.Marshal(envelope{Type: event, Payload: payload})
	if err != nil {
		h.logger.Error("ws: marshal event", slog.String("event", event), slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- broadcastMsg{event: event, data: data}:
	default:
		h.logger.Warn("ws: broadcast buffer full, dropping event", slog.String("event", event))
	}
}

// HandleWS upgrades an HTTP request to a WebSocket connection and registers
// the client with the hub.
// GET /ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]bool),
	}
	for _, ev := range defaultEvents {
		c.subs[ev] = true
	}

	c.sendConnected()

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump reads subscription changes from the client until the connection
// closes.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws: unexpected close error",
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var sub subscribeMsg
		if jsonErr := json.Unmarshal(message, &sub); jsonErr == nil && sub.Action != "" {
			c.handleSubscription(sub)
		}
	}
}

// handleSubscription processes subscribe/unsubscribe requests from the client.
func (c *client) handleSubscription(msg subscribeMsg) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch msg.Action {
	case "subscribe":
		for _, ev := range msg.Events {
			c.subs[ev] = true
		}
	case "unsubscribe":
		for _, ev := range msg.Events {
			delete(c.subs, ev)
		}
	}
}

// sendConnected greets a new client so it can mark the connection healthy
// before the next refresh.
func (c *client) sendConnected() {
	uptime := int64(time.Since(c.hub.startedAt).Seconds())
	msg, err := json.Marshal(envelope{
		Type: EventConnected,
		Payload: map[string]any{
			"uptime_seconds": uptime,
			"events":         defaultEvents,
		},
	})
	if err != nil {
		return
	}

	select {
	case c.send <- msg:
	default:
	}
}

// isSubscribed checks whether the client wants the given event type.
func (c *client) isSubscribed(event string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subs[event] || c.subs["*"]
}

// writePump pumps messages from the hub to the WebSocket connection as text
// frames and sends periodic pings for keepalive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
