// Package broadcast pushes finished session summaries to live consumers:
// browser clients over WebSocket and the advice service over MQTT.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/pkg/logger"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// per-client outbound queue; slow clients are dropped when it is full
	clientQueueSize = 16

	// replay window for clients that connect after a session ended
	replayTTL = 30 * time.Minute
)

type client struct {
	conn   *websocket.Conn
	userID string // empty: all users
	send   chan []byte
}

// Hub fans summaries out to connected WebSocket clients
// ⭐ SSOT: WebSocket 클라이언트 관리는 이 허브에서만
type Hub struct {
	upgrader websocket.Upgrader
	latest   *LatestSummaries
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub; allowedOrigins empty accepts any origin
func NewHub(allowedOrigins []string, log *logger.Logger) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		latest:  NewLatestSummaries(replayTTL, log.WithModule("ws-hub")),
		logger:  log.WithModule("ws-hub"),
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request; ?user_id= limits the stream to one user
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		userID: r.URL.Query().Get("user_id"),
		send:   make(chan []byte, clientQueueSize),
	}

	// 접속 직후 해당 사용자의 최신 요약 재전송
	if c.userID != "" {
		if s, ok := h.latest.Get(c.userID); ok {
			if payload, err := json.Marshal(s); err == nil {
				c.send <- payload
			}
		}
	}
	h.register(c)

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Publish implements contracts.SummaryPublisher
func (h *Hub) Publish(_ context.Context, s *contracts.SessionSummary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	h.latest.Update(s)
	h.latest.CleanStale()

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		if c.userID != "" && c.userID != s.UserID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WithField("user_id", c.userID).Warn("Dropping slow WebSocket client")
		h.unregister(c)
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"user_id": c.userID,
		"clients": n,
	}).Info("WebSocket client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
}

// readLoop only handles control frames; inbound messages are ignored
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
