package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 2048
)

// Feed names a client can subscribe to.
const (
	FeedTrips       = "trips"
	FeedMyTrips     = "my_trips"
	FeedUsers       = "users"
	FeedTripBreadcr = "trip_locations"
)

// Client represents one WebSocket connection and its live-query
// subscriptions. Each subscription is a store watcher whose snapshots
// are forwarded down the socket; tearing the connection down cancels
// every watcher.
type Client struct {
	UserID   string
	UserType string
	conn     *websocket.Conn
	hub      *Hub
	store    *database.Store
	send     chan []byte

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	cancels map[string]context.CancelFunc // feed key -> watcher cancel
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Type   string `json:"type"`
	Feed   string `json:"feed,omitempty"`
	TripID string `json:"trip_id,omitempty"`
}

// SnapshotMessage wraps one live-query result pushed to the client.
type SnapshotMessage struct {
	Type string      `json:"type"`
	Feed string      `json:"feed"`
	Data interface{} `json:"data"`
}

// NewClient creates a new WebSocket client
func NewClient(userID, userType string, conn *websocket.Conn, hub *Hub, store *database.Store) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		UserID:   userID,
		UserType: userType,
		conn:     conn,
		hub:      hub,
		store:    store,
		send:     make(chan []byte, 256),
		ctx:      ctx,
		cancel:   cancel,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// ReadPump pumps messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("Invalid message format: %v", err)
			continue
		}

		switch msg.Type {
		case "ping":
			// Heartbeat only, nothing to do
		case "subscribe":
			c.subscribe(msg)
		case "unsubscribe":
			c.unsubscribe(feedKey(msg))
		default:
			log.Printf("Unknown message type from %s: %s", c.UserID, msg.Type)
		}
	}
}

// WritePump pumps messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func feedKey(msg IncomingMessage) string {
	if msg.Feed == FeedTripBreadcr {
		return msg.Feed + ":" + msg.TripID
	}
	return msg.Feed
}

func (c *Client) subscribe(msg IncomingMessage) {
	key := feedKey(msg)

	c.mu.Lock()
	if _, exists := c.cancels[key]; exists {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancels[key] = cancel
	c.mu.Unlock()

	switch msg.Feed {
	case FeedTrips:
		forward(c, msg.Feed, c.store.WatchAllTrips(ctx))
	case FeedMyTrips:
		if c.UserType == string(models.UserTypeSupervisor) {
			forward(c, msg.Feed, c.store.WatchTripsBySupervisor(ctx, c.UserID))
		} else {
			forward(c, msg.Feed, c.store.WatchTripsByDriver(ctx, c.UserID))
		}
	case FeedUsers:
		forward(c, msg.Feed, c.store.WatchAllUsers(ctx))
	case FeedTripBreadcr:
		if msg.TripID == "" {
			c.unsubscribe(key)
			return
		}
		forward(c, msg.Feed, c.store.WatchTripLocations(ctx, msg.TripID))
	default:
		log.Printf("Unknown feed from %s: %s", c.UserID, msg.Feed)
		c.unsubscribe(key)
	}
}

func (c *Client) unsubscribe(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.cancels[key]; ok {
		cancel()
		delete(c.cancels, key)
	}
}

// forward pushes every snapshot from a watcher down the client socket.
func forward[T any](c *Client, feed string, snapshots <-chan []T) {
	go func() {
		for snapshot := range snapshots {
			data, err := json.Marshal(SnapshotMessage{Type: "snapshot", Feed: feed, Data: snapshot})
			if err != nil {
				log.Printf("Failed to marshal %s snapshot: %v", feed, err)
				continue
			}
			select {
			case c.send <- data:
			case <-c.ctx.Done():
				return
			}
		}
	}()
}
