package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"job-engine-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries chat frames between instances sharing a Redis
const ClusterChannel = "chat_events"

type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients: SessionID -> every open connection of that session
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	// closed once Run has returned
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, nil when running alone
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves registrations until ctx is done. After that Register refuses clients and Unregister acts directly.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		}
	}
}

// Register hands the client to Run. Once the hub is stopped the client is refused and its Send channel closed.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		h.mu.Lock()
		h.remove(client)
		h.mu.Unlock()
	}
}

// registered must be called with mu held
func (h *Hub) registered(client *Client) bool {
	for _, c := range h.clients[client.SessionID] {
		if c == client {
			return true
		}
	}
	return false
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("Hub", "Session has no open connection left", map[string]interface{}{"session_id": client.SessionID})
	}
}

// Send delivers a frame to every connection of the session, here and on the other instances
func (h *Hub) Send(sessionID string, data []byte) {
	h.deliverLocal(sessionID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{
			Origin:    h.instanceID,
			SessionID: sessionID,
			Message:   data,
		})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish frame to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliverLocal(sessionID string, data []byte) {
	var dropped []*Client

	h.mu.RLock()
	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"session_id": sessionID})
			dropped = append(dropped, client)
		}
	}
	h.mu.RUnlock()

	if len(dropped) > 0 {
		h.mu.Lock()
		for _, client := range dropped {
			h.remove(client)
		}
		h.mu.Unlock()
	}
}

// SessionCount returns the number of sessions with at least one open connection
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(payload.SessionID, payload.Message)
		}
	}
}
