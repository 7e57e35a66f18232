// Package ops is the operational HTTP surface of the bot: health and
// readiness probes, catalog stats, and a live websocket feed of
// ingest events for monitoring tooling.
package ops

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// IngestEvent is broadcast to feed subscribers after every successful
// catalog mutation.
type IngestEvent struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"` // new_drama, new_episode, updated_episode, new_cover, updated_cover
	DramaID  string    `json:"drama_id"`
	Title    string    `json:"title"`
	Episode  string    `json:"episode,omitempty"`
	Episodes int       `json:"episodes"`
	At       time.Time `json:"at"`
}

// Hub fans ingest events out to connected websocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(ws *websocket.Conn) {
	h.mu.Lock()
	h.clients[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends ev to every client, dropping clients whose writes fail.
func (h *Hub) Broadcast(ev IngestEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
}
