package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dentanet/api/internal/model"
)

const redisChannel = "dentanet:notifications"

// Hub manages WebSocket connections for the notification feed. The feed is
// push-only; clients never send application messages. Redis Pub/Sub fans
// events out across instances, so a notification created on one server
// reaches a user connected to another.
type Hub struct {
	// userID -> set of connections (a user can have several tabs open)
	clients map[uuid.UUID]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client

	rdb *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
	}
}

// Run starts the hub's event loop. Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.UserID]; !ok {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	log.Printf("✅ Feed connected: %s (connections: %d)", client.UserID, len(h.clients[client.UserID]))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.UserID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}
	log.Printf("❌ Feed disconnected: %s", client.UserID)
}

// SendToUser delivers an event to every connection a user has, on any
// instance.
func (h *Hub) SendToUser(userID uuid.UUID, event *model.WSEvent) {
	if h.rdb == nil {
		h.sendToLocalUser(userID, event)
		return
	}
	h.publishToRedis(&targetedEvent{TargetUserID: userID, Event: event})
}

// Broadcast delivers an event to every connected user on every instance
func (h *Hub) Broadcast(event *model.WSEvent) {
	if h.rdb == nil {
		h.broadcastToLocal(event)
		return
	}
	h.publishToRedis(&targetedEvent{Event: event})
}

func (h *Hub) sendToLocalUser(userID uuid.UUID, event *model.WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Send buffer full, drop the connection
			close(client.send)
			delete(clients, client)
		}
	}
}

func (h *Hub) broadcastToLocal(event *model.WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling broadcast event: %v", err)
		return
	}
	for _, clients := range h.clients {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				close(client.send)
				delete(clients, client)
			}
		}
	}
}

// targetedEvent wraps an event with an optional target for Redis Pub/Sub.
// A nil target means broadcast.
type targetedEvent struct {
	TargetUserID uuid.UUID      `json:"target_user_id,omitempty"`
	Event        *model.WSEvent `json:"event"`
}

func (h *Hub) publishToRedis(data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling for Redis: %v", err)
		return
	}
	if err := h.rdb.Publish(context.Background(), redisChannel, jsonData).Err(); err != nil {
		log.Printf("Error publishing to Redis: %v", err)
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	log.Println("📡 Redis Pub/Sub subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			var targeted targetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &targeted); err != nil {
				log.Printf("Error unmarshaling Redis message: %v", err)
				continue
			}
			if targeted.TargetUserID != uuid.Nil {
				h.sendToLocalUser(targeted.TargetUserID, targeted.Event)
			} else if targeted.Event != nil {
				h.broadcastToLocal(targeted.Event)
			}
		}
	}
}
