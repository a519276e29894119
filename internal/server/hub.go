package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket keepalive and limit settings.
const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 5 * time.Second
	maxMessageSize = 1 << 16
)

// Hub tracks connected WebSocket clients and fans broadcasts out to them.
// Every client receives every broadcast; there are no per-topic
// subscriptions.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("ws client connected", "conn_id", c.id, "clients", n)
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()

	h.logger.Info("ws client detached", "conn_id", c.id, "clients", len(h.clients))
}

// Broadcast sends data to every connected client. A client whose send buffer
// is full is detached instead of blocking the caller.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("ws send buffer full, dropping client", "conn_id", c.id)
			go h.detachClient(c)
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// Client is one WebSocket connection registered with the hub.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	id        uuid.UUID
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, sendBuffer int) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		id:   uuid.New(),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// writePump drains the send channel onto the connection and keeps the
// connection alive with periodic pings.
func (c *Client) writePump() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	defer c.hub.detachClient(c)

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Warn("ws write error", "conn_id", c.id, "err", err)
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.hub.logger.Warn("ws ping error", "conn_id", c.id, "err", err)
				return
			}
		}
	}
}

// readPump discards inbound messages. The stream is push-only, but reading
// is still required to process control frames and notice closed connections.
func (c *Client) readPump() {
	defer c.hub.detachClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.logger.Debug("ws read closed", "conn_id", c.id, "err", err)
			}
			return
		}
	}
}
