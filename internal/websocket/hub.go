package websocket

import (
	"context"
	"sync"

	"leadscout-be/internal/constant"
	"leadscout-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub pushes job status updates to connected dashboard clients. Updates
// are also relayed through Redis pub/sub so every instance reaches its own
// clients.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"clients": len(h.clients)})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"clients": len(h.clients)})
		}
	}
}

// Broadcast sends a job update to every connected dashboard client. With
// Redis available the update goes through pub/sub so all instances,
// including this one, deliver it to their own clients.
func (h *Hub) Broadcast(data []byte) {
	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), constant.JobEventsChannel, data).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to relay update via Redis", map[string]interface{}{"error": err.Error()})
			h.broadcastLocal(data)
		}
		return
	}
	h.broadcastLocal(data)
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer, drop it rather than block the hub.
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// subscribeToRedis delivers updates published by any instance, ours
// included.
func (h *Hub) subscribeToRedis() {
	sub := h.rdb.Subscribe(context.Background(), constant.JobEventsChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		h.broadcastLocal([]byte(msg.Payload))
	}
}
