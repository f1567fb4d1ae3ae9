package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // preview clients are served from other origins
	},
}

type message struct {
	kind int
	data []byte
}

// Hub broadcasts preview messages to every connected websocket client.
// New clients immediately receive the latest message.
type Hub struct {
	name   string
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	latest  *message
}

// NewHub creates a hub; name labels log lines.
func NewHub(name string, logger *slog.Logger) *Hub {
	return &Hub{
		name:    name,
		logger:  logger,
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *Hub) log() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the connection and keeps it registered until the client
// disconnects. Incoming messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log().Warn("WebSocket upgrade failed", "stream", h.name, "error", err)
		return
	}
	defer conn.Close()

	// Hold the connection lock until the latest message is out so a
	// concurrent broadcast cannot overtake it.
	connMu := &sync.Mutex{}
	connMu.Lock()
	h.mu.Lock()
	h.clients[conn] = connMu
	latest := h.latest
	h.mu.Unlock()
	defer h.remove(conn)

	h.log().Debug("Preview client connected", "stream", h.name, "remote", r.RemoteAddr)

	if latest != nil {
		err = writeLocked(conn, latest)
	}
	connMu.Unlock()
	if err != nil {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log().Debug("Preview client disconnected", "stream", h.name, "error", err)
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

// Broadcast sends data to all clients. Clients that fail to receive are
// disconnected.
func (h *Hub) Broadcast(kind int, data []byte) {
	msg := &message{kind: kind, data: data}

	h.mu.Lock()
	h.latest = msg
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		targets[conn] = mu
	}
	h.mu.Unlock()

	for conn, mu := range targets {
		if err := write(conn, mu, msg); err != nil {
			h.log().Debug("Dropping preview client", "stream", h.name, "error", err)
			h.remove(conn)
			conn.Close()
		}
	}
}

func write(conn *websocket.Conn, mu *sync.Mutex, msg *message) error {
	mu.Lock()
	defer mu.Unlock()
	return writeLocked(conn, msg)
}

func writeLocked(conn *websocket.Conn, msg *message) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(msg.kind, msg.data)
}
