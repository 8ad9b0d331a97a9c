package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"warbler/internal/middleware"
	"warbler/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerUser = 8
	maxTotalConns   = 10000
)

var (
	ErrHubClosed      = errors.New("feed hub is shut down")
	ErrServerFull     = errors.New("server connection limit reached")
	ErrUserConnsLimit = errors.New("user connection limit reached")
)

// Hub maps a user id to that user's open feed sockets on this instance.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*Client]struct{}
	total  int
	closed bool
}

func NewHub() *Hub {
	return &Hub{conns: make(map[uint]map[*Client]struct{})}
}

// Register adds a socket for userID.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.total >= maxTotalConns {
		return nil, ErrServerFull
	}
	clients, ok := h.conns[userID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.conns[userID] = clients
	}
	if len(clients) >= maxConnsPerUser {
		return nil, ErrUserConnsLimit
	}

	client := newClient(h, conn, userID)
	clients[client] = struct{}{}
	h.total++
	observability.FeedConnections.Inc()
	return client, nil
}

// Unregister removes client and closes its send buffer. It is safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.conns, client.UserID)
	}
	h.total--
	observability.FeedConnections.Dec()
	close(client.send)
}

// Deliver queues payload on every socket userID holds on this instance.
func (h *Hub) Deliver(userID uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[userID] {
		c.trySend(payload)
	}
}

// Connections returns the number of open sockets for userID.
func (h *Hub) Connections(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Start subscribes the hub to the notifier's channels until ctx is done.
func (h *Hub) Start(ctx context.Context, n *Notifier) error {
	return n.Subscribe(ctx, func(userID uint, payload string) {
		h.Deliver(userID, []byte(payload))
	})
}

// Shutdown closes every send buffer, which makes each WritePump send a
// going-away close frame and drop its socket.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, clients := range h.conns {
		for c := range clients {
			close(c.send)
			observability.FeedConnections.Dec()
		}
	}
	middleware.Logger.Info("feed hub shut down", slog.Int("connections", h.total))
	h.conns = make(map[uint]map[*Client]struct{})
	h.total = 0
	return nil
}
