package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// AnalysisHub streams evaluation reports to /ws/analysis subscribers. New
// clients get the latest report immediately so a dashboard renders without
// waiting for the next move.
type AnalysisHub struct {
	mu        sync.Mutex
	clients   map[*AnalysisClient]struct{}
	broadcast chan AnalysisReport
	latest    func() (AnalysisReport, bool)
}

type AnalysisClient struct {
	hub  *AnalysisHub
	conn *websocket.Conn
	send chan []byte
}

func NewAnalysisHub(latest func() (AnalysisReport, bool)) *AnalysisHub {
	return &AnalysisHub{
		clients:   make(map[*AnalysisClient]struct{}),
		broadcast: make(chan AnalysisReport, 64),
		latest:    latest,
	}
}

func (h *AnalysisHub) Run(done <-chan struct{}) {
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
				client.sendJSON(wsMessage{Type: "analysis", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *AnalysisHub) Publish(payload AnalysisReport) {
	select {
	case h.broadcast <- payload:
	default:
	}
}

func (h *AnalysisHub) Register(c *AnalysisClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *AnalysisHub) Unregister(c *AnalysisClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *AnalysisClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveAnalysisWS(hub *AnalysisHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &AnalysisClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	if hub.latest != nil {
		if report, ok := hub.latest(); ok {
			client.sendJSON(wsMessage{Type: "analysis", Payload: mustMarshal(report)})
		}
	}

	go func() {
		defer conn.Close()
		runWritePump("analysis", conn, client.send)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
