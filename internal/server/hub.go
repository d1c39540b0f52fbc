package server

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/BotView/internal/download"
	"github.com/Alias1177/BotView/internal/metrics"
	"github.com/Alias1177/BotView/models"
)

const writeWait = 10 * time.Second

// originChecker accepts same-host browser origins, the configured allow-list, and
// clients that send no Origin header at all
func originChecker(allowed []string) func(r *http.Request) bool {
	allow := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allow[strings.ToLower(strings.TrimRight(o, "/"))] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allow[strings.ToLower(origin)] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

type wsClient struct {
	conn *websocket.Conn
	send chan models.BackgroundTaskStatus
}

// Hub pushes job status updates to every connected websocket
type Hub struct {
	tracker  *download.Tracker
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]bool
	closed  bool
}

// NewHub creates a hub that greets new clients with the tracker snapshot.
// allowedOrigins extends the same-host origin check.
func NewHub(tracker *download.Tracker, allowedOrigins []string) *Hub {
	return &Hub{
		tracker:  tracker,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		logger:   log.With().Str("component", "ws_hub").Logger(),
		clients:  make(map[*wsClient]bool),
	}
}

// Serve upgrades the request and streams updates until the client goes away
func (h *Hub) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade websocket")
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan models.BackgroundTaskStatus, 64),
	}

	for _, status := range h.tracker.RunningJobs() {
		client.send <- status
		if len(client.send) == cap(client.send) {
			break
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[client] = true
	h.mu.Unlock()
	metrics.WSConnections.Inc()

	go h.writePump(client)
	h.readPump(client)
}

// Broadcast is a download.Listener. Slow clients drop updates rather than block polling.
func (h *Hub) Broadcast(status models.BackgroundTaskStatus) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- status:
		default:
			h.logger.Warn().Str("job_id", status.JobID).Msg("Websocket client too slow, dropping update")
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *wsClient) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WSConnections.Dec()
}

// readPump only drains control frames; the stream is one-way
func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	defer c.conn.Close()

	for status := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(status); err != nil {
			h.logger.Debug().Err(err).Msg("Websocket write failed")
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
