package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/lanscan/internal/discovery"
	"github.com/muurk/lanscan/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Messages queued per client before it is considered too slow
	sendBuffer = 64
)

// Event types pushed to live feed clients
const (
	EventScan       = "scan"
	EventRegression = "regression"
)

// Event is the JSON envelope of every live feed message
type Event struct {
	Type       string                 `json:"type"`
	Scan       *discovery.ScanResult  `json:"scan,omitempty"`
	Regression *discovery.Regression `json:"regression,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// client is one websocket subscriber
type client struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
}

// Hub fans events out to connected websocket clients. Its OnRegression
// method is a discovery.Config.OnRegression hook.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	logger  *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OnRegression broadcasts a latency regression
func (h *Hub) OnRegression(r discovery.Regression) {
	h.Broadcast(Event{Type: EventRegression, Regression: &r})
}

// Broadcast queues an event for every client. Clients whose queue is full
// are disconnected.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow client", zap.String("remote_addr", c.remoteAddr))
			h.removeLocked(c)
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes a client's queue; its write pump then closes the
// connection. h.mu must be held.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// handleWebSocket upgrades the request and streams events. initial, when
// non-nil, is sent before any broadcast.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request, initial *Event) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		conn:       conn,
		remoteAddr: r.RemoteAddr,
		send:       make(chan []byte, sendBuffer),
	}

	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			c.send <- data
		}
	}

	if !h.register(c) {
		_ = conn.Close()
		return
	}
	logging.LogConnection(c.remoteAddr, "websocket_connected")

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and detects disconnects
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		logging.LogConnection(c.remoteAddr, "websocket_closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Info("WebSocket read error",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump sends queued events and keepalive pings
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("WebSocket write failed",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
