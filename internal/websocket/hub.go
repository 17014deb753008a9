package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains active WebSocket connections and routes pushed messages
// to them. Live-query snapshots flow per-client (see client.go); the
// hub carries targeted pushes such as trip notifications.
type Hub struct {
	// Registered clients (userID -> Client)
	clients map[string]*Client

	// Outbound messages targeted at one user
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// Message represents a message to deliver to a specific user
type Message struct {
	UserID string
	Data   interface{}
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client connected: %s (%s), total: %d",
				client.UserID, client.UserType, h.ClientCount())

		case client := <-h.unregister:
			// The send channel is never closed here: live-query
			// forwarders may still hold it. They exit via the client
			// context and the channel is collected with the client.
			h.mu.Lock()
			delete(h.clients, client.UserID)
			h.mu.Unlock()
			log.Printf("🔴 [WEBSOCKET] Client disconnected: %s, remaining: %d",
				client.UserID, h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			if client, ok := h.clients[message.UserID]; ok {
				data, err := json.Marshal(message.Data)
				if err != nil {
					log.Printf("❌ Failed to marshal message: %v", err)
					h.mu.RUnlock()
					continue
				}
				select {
				case client.send <- data:
				default:
					log.Printf("⚠️ Client buffer full, dropping push for: %s", message.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PushToUser sends a message to a specific user
func (h *Hub) PushToUser(userID string, data interface{}) {
	h.broadcast <- &Message{UserID: userID, Data: data}
}

// PushToType sends a message to all connected users of a given type
func (h *Hub) PushToType(userType string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dataBytes, err := json.Marshal(data)
	if err != nil {
		log.Printf("❌ Failed to marshal broadcast message: %v", err)
		return
	}

	for _, client := range h.clients {
		if client.UserType == userType {
			select {
			case client.send <- dataBytes:
			default:
			}
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
