// Package stream broadcasts completed evaluations to websocket subscribers.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/metrics"
	"github.com/yourusername/prop-evaluator/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Hub tracks connected clients. It implements evaluator.Sink so every
// result is pushed to subscribers once the evaluation returns.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logrus.Entry

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub. checkOrigin may be nil to accept any origin.
func NewHub(checkOrigin func(*http.Request) bool, log *logrus.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		logger:  log.WithField("component", "stream"),
		clients: make(map[*client]struct{}),
	}
}

// Name implements evaluator.Sink.
func (h *Hub) Name() string { return "stream" }

// Write implements evaluator.Sink. It never blocks on a slow client.
func (h *Hub) Write(_ context.Context, result *models.EvaluationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}

// Broadcast queues payload for every client. Clients whose buffer is full
// are disconnected.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.removeLocked(c)
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.WithField("dropped", dropped).Warn("Disconnected slow stream clients")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		hub:  h,
	}
	if !h.add(c) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateStreamClients(len(h.clients))
	h.logger.WithFields(logrus.Fields{"client_id": c.id, "clients": len(h.clients)}).Debug("Stream client connected")
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.UpdateStreamClients(len(h.clients))
	h.logger.WithFields(logrus.Fields{"client_id": c.id, "clients": len(h.clients)}).Debug("Stream client disconnected")
}
