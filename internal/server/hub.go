package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/memolab/internal/telemetry"
	"github.com/vango-dev/memolab/pkg/store"
)

// MessageType represents the type of a stream message.
type MessageType string

const (
	MessageHello MessageType = "hello"
	MessageAtom  MessageType = "atom"
)

// Message is sent to stream clients via WebSocket.
type Message struct {
	Type    MessageType `json:"type"`
	Client  string      `json:"client,omitempty"`
	Atom    string      `json:"atom,omitempty"`
	Value   any         `json:"value,omitempty"`
	Version uint64      `json:"version,omitempty"`
}

const (
	defaultWriteTimeout = 5 * time.Second
	sendBuffer          = 64
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub streams atom writes to WebSocket clients.
type Hub struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	closed   bool
	upgrader websocket.Upgrader

	metrics      *telemetry.Metrics
	logger       *slog.Logger
	writeTimeout time.Duration
}

// NewHub creates a hub. With no allowed origins only same-origin clients
// may connect. metrics may be nil.
func NewHub(allowedOrigins []string, metrics *telemetry.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
		metrics:      metrics,
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) > 0 {
			return slices.Contains(allowed, origin) || slices.Contains(allowed, "*")
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.recordError("upgrade")
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	if data, err := json.Marshal(Message{Type: MessageHello, Client: c.id}); err == nil {
		c.send <- data
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = true
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.ClientConnected()
	}
	h.logger.Debug("stream client connected", "client", c.id)
	go h.writePump(c)

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.recordError("read")
			}
			break
		}
	}

	h.remove(c)
	h.logger.Debug("stream client disconnected", "client", c.id)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.recordError("write")
			// Closing the connection ends the read loop, which removes c
			// and closes c.send.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// remove unregisters c and closes its send queue.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.ClientDisconnected()
	}
}

// Notify sends a store change to all clients. It has the signature of a
// store.Store OnChange watcher and never blocks on the network.
func (h *Hub) Notify(change store.Change) {
	h.broadcast(Message{
		Type:    MessageAtom,
		Atom:    change.Atom,
		Value:   change.Value,
		Version: change.Version,
	})
}

// broadcast queues a message for all connected clients. Clients whose
// queue is full are disconnected.
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.recordError("encode")
		h.logger.Warn("stream message not encodable", "atom", msg.Atom, "error", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.recordError("slow_client")
		h.logger.Warn("dropping slow stream client", "client", c.id)
		c.conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		if h.metrics != nil {
			h.metrics.ClientDisconnected()
		}
	}
}

func (h *Hub) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordWebSocketError(kind)
	}
}
