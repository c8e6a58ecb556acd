package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Mtank10/career-counselling-chat-app/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const relayChannel = "chat_events"

// Hub tracks connected clients per user and pushes chat events to them.
// When Redis is configured, events are relayed across instances so a client
// connected elsewhere still receives them.
type Hub struct {
	// UserID -> connected clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.relayLoop()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers an event envelope to every connection the user has.
func (h *Hub) Send(userID uuid.UUID, eventType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to serialize event", map[string]interface{}{"error": err.Error()})
		return
	}

	// With Redis the relay loop delivers locally too, so publishing once
	// covers every instance without duplicating on this one.
	if h.rdb != nil {
		relay, _ := json.Marshal(relayEnvelope{TargetUserID: userID.String(), Message: data})
		if err := h.rdb.Publish(context.Background(), relayChannel, relay).Err(); err != nil {
			h.logger.Warn("Hub", "Event relay publish failed", map[string]interface{}{"error": err.Error()})
			h.sendLocal(userID, data)
		}
		return
	}

	h.sendLocal(userID, data)
}

func (h *Hub) sendLocal(userID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// The unregister branch is the sole closer of Send; closing
			// here as well would close the channel twice.
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"user_id": userID})
			h.unregister <- client
		}
	}
}

type relayEnvelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// relayLoop consumes events published by other instances and forwards them
// to locally connected clients.
func (h *Hub) relayLoop() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var envelope relayEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			h.logger.Warn("Hub", "Malformed relay payload", map[string]interface{}{"error": err.Error()})
			continue
		}

		uid, err := uuid.Parse(envelope.TargetUserID)
		if err != nil {
			continue
		}

		h.sendLocal(uid, envelope.Message)
	}
}
