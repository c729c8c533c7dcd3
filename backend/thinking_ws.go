package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ThinkingHub streams live search progress to /ws/thinking subscribers.
// Updates carry mode "turn" for the seat to move and "hint" for the
// suggestion search on human turns.
type ThinkingHub struct {
	mu        sync.Mutex
	clients   map[*ThinkingClient]struct{}
	broadcast chan ThinkingUpdate
}

type ThinkingClient struct {
	hub  *ThinkingHub
	conn *websocket.Conn
	send chan []byte
}

func NewThinkingHub() *ThinkingHub {
	return &ThinkingHub{
		clients:   make(map[*ThinkingClient]struct{}),
		broadcast: make(chan ThinkingUpdate, 32),
	}
}

func (h *ThinkingHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcast:
			h.mu.Lock()
			if len(h.clients) == 0 {
				h.mu.Unlock()
				continue
			}
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "thinking", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *ThinkingHub) Register(c *ThinkingClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *ThinkingHub) Unregister(c *ThinkingClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *ThinkingHub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *ThinkingHub) Publish(payload ThinkingUpdate) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (c *ThinkingClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveThinkingWS(hub *ThinkingHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &ThinkingClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	go func() {
		defer conn.Close()
		runWritePump("thinking", conn, client.send)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
