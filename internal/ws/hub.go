package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quocanhngo/kickoff/internal/model"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisChannel = "kickoff:realtime"

// Hub tracks the sockets connected to this instance. Events addressed to a
// user go through Redis Pub/Sub so whichever instance holds the user's
// sockets delivers them.
type Hub struct {
	// userID -> set of connections (one user can have several devices)
	clients map[string]map[*Client]bool
	mu      sync.Mutex

	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	rdb *redis.Client
}

// NewHub creates a new WebSocket Hub
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
	}
}

// Run starts the Hub's main event loop. When ctx ends every local socket
// is closed and later Register/Unregister calls return immediately.
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)
	h.loop(ctx)
}

func (h *Hub) loop(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a client for registration with the hub.
// It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister queues a client for removal. It does not block after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.WithFields(log.Fields{
		"user_id":     client.UserID,
		"connections": len(h.clients[client.UserID]),
	}).Info("✅ Client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
	log.WithField("user_id", client.UserID).Info("❌ Client disconnected")
}

// dropLocked forgets a client and closes its send channel once
func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.clients[client.UserID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.UserID)
	}
}

// closeAll drops every local client, which ends their write pumps
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.dropLocked(client)
		}
	}
}

// SendToUser publishes an event for every connection of userID on any instance
func (h *Hub) SendToUser(ctx context.Context, userID string, event model.WSEvent) error {
	data, err := json.Marshal(TargetedEvent{TargetUserID: userID, Event: event})
	if err != nil {
		return fmt.Errorf("encode realtime event: %w", err)
	}
	if err := h.rdb.Publish(ctx, redisChannel, data).Err(); err != nil {
		return fmt.Errorf("publish realtime event: %w", err)
	}
	return nil
}

// sendToLocalUser writes an encoded event to this instance's sockets for userID.
// A client whose buffer is full is dropped.
func (h *Hub) sendToLocalUser(userID string, data []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for client := range h.clients[userID] {
		select {
		case client.send <- data:
			delivered++
		default:
			h.dropLocked(client)
		}
	}
	return delivered
}

// ========== Redis Pub/Sub for Horizontal Scaling ==========

// TargetedEvent wraps an event with its recipient for Redis Pub/Sub
type TargetedEvent struct {
	TargetUserID string        `json:"target_user_id"`
	Event        model.WSEvent `json:"event"`
}

// deliver routes one Pub/Sub payload to local sockets
func (h *Hub) deliver(payload string) {
	var targeted struct {
		TargetUserID string          `json:"target_user_id"`
		Event        json.RawMessage `json:"event"`
	}
	if err := json.Unmarshal([]byte(payload), &targeted); err != nil {
		log.WithError(err).Warn("Error unmarshaling Redis message")
		return
	}
	if targeted.TargetUserID == "" || len(targeted.Event) == 0 {
		return
	}
	h.sendToLocalUser(targeted.TargetUserID, targeted.Event)
}

// subscribeRedis subscribes to Redis and delivers events to local clients
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Info("📡 Redis Pub/Sub subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliver(msg.Payload)
		}
	}
}
