package web

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket Upgrader (Gorilla)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // Allow all origins for dev
}

// client serializes writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans messages out to WebSocket clients following a run.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{})}
}

// Handler upgrades GET requests carrying a run_id query parameter and keeps
// the connection registered until the peer disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. Extract RunID from Query Params
		runID := r.URL.Query().Get("run_id")
		if runID == "" {
			http.Error(w, "run_id is required", http.StatusBadRequest)
			return
		}

		// 2. Upgrade to WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("WebSocket upgrade failed", "error", err)
			return
		}

		// 3. Register to Hub
		slog.Info("Client connected via WebSocket", "runID", runID, "remoteAddr", conn.RemoteAddr())
		c := &client{conn: conn}
		h.add(runID, c)

		// 4. Clean up on disconnect
		defer func() {
			slog.Info("Client disconnected", "runID", runID)
			h.remove(runID, c)
			conn.Close()
		}()

		// 5. Drain reads until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}

// Broadcast writes v as JSON to every client following runID and returns
// the number of successful deliveries.
func (h *Hub) Broadcast(runID string, v any) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[runID]))
	for c := range h.clients[runID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(v); err != nil {
			slog.Warn("Failed to write to websocket", "runID", runID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Clients returns the number of connections following runID.
func (h *Hub) Clients(runID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[runID])
}

func (h *Hub) add(runID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[runID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[runID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(runID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[runID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, runID)
	}
}
