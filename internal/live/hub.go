// Package live broadcasts open-bucket snapshots to WebSocket subscribers.
package live

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Hub tracks connected WebSocket subscribers and fans snapshot payloads out
// to all of them. Subscribers are read-only consumers; anything they send is
// discarded.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Snapshot data is public; subscribers come from any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades an HTTP request to a WebSocket subscription.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("subscriber connected", "remote", r.RemoteAddr, "total", total)

	// Drain reads so control frames are processed and closes are noticed.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one payload to every subscriber. Subscribers that fail a
// write are dropped.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		err := conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err == nil {
			err = conn.WriteMessage(websocket.TextMessage, payload)
		}
		if err != nil {
			h.logger.Warn("dropping slow subscriber", "error", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) remove(conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		h.logger.Info("subscriber disconnected", "total", len(h.conns))
	}
	h.mu.Unlock()
}
