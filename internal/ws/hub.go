// Package ws pushes ingest-job status updates to browsers over WebSocket
// and SSE, fed by the cache pubsub channel the worker publishes on.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/branddesk/branddesk-backend/internal/metrics"
	"github.com/branddesk/branddesk-backend/internal/store"
)

// Event is the frame sent to connected clients.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type subscribeRequest struct {
	Type   string   `json:"type"`
	JobIDs []string `json:"jobIds,omitempty"`
}

type Hub struct {
	cache          *store.Cache
	logger         *zap.SugaredLogger
	metrics        *metrics.Metrics
	allowedOrigins []string

	mu      sync.RWMutex
	clients map[*client]bool

	register   chan *client
	unregister chan *client
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	jobIDs map[string]bool // empty means all jobs
}

func NewHub(cache *store.Cache, allowedOrigins []string, logger *zap.SugaredLogger, m *metrics.Metrics) *Hub {
	return &Hub{
		cache:          cache,
		logger:         logger,
		metrics:        m,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*client]bool),
		register:       make(chan *client),
		unregister:     make(chan *client),
	}
}

// Run owns the client set and relays job updates until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	sub := h.cache.Subscribe(ctx, store.ChannelJobs)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			h.logger.Infow("WebSocket hub shutting down")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.metrics.IncrementConnections(ctx)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.metrics.DecrementConnections(ctx)

		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg *store.Message) {
	event := Event{
		Type:      "job_update",
		Data:      json.RawMessage(msg.Payload),
		Timestamp: time.Now().Unix(),
	}
	frame, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("Marshaling ws event failed", "error", err)
		return
	}

	jobID := jobIDFromPayload(msg.Payload)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(jobID) {
			continue
		}
		select {
		case c.send <- frame:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func jobIDFromPayload(payload string) string {
	var partial struct {
		JobID string `json:"jobId"`
	}
	_ = json.Unmarshal([]byte(payload), &partial)
	return partial.JobID
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades the connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorw("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 64),
		jobIDs: make(map[string]bool),
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) wants(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.jobIDs) == 0 {
		return true
	}
	return c.jobIDs[jobID]
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debugw("WebSocket read error", "error", err)
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *client) handleMessage(message []byte) {
	var req subscribeRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.hub.logger.Debugw("Invalid ws client message", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch req.Type {
	case "subscribe":
		for _, id := range req.JobIDs {
			c.jobIDs[id] = true
		}
	case "unsubscribe":
		for _, id := range req.JobIDs {
			delete(c.jobIDs, id)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
