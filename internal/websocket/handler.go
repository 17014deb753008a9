package websocket

import (
	"log"
	"net/http"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/middleware"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Restrict in production
		return true
	},
}

// HandleWebSocket upgrades HTTP connections to WebSocket. The token
// travels as a query parameter because browsers can't set headers on
// WebSocket handshakes.
func HandleWebSocket(hub *Hub, store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")

		var claims middleware.UserClaims
		if tokenString != "" {
			parsed, err := middleware.ParseToken(tokenString)
			if err != nil {
				log.Printf("❌ Invalid token on websocket handshake: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			claims = *parsed
		} else {
			// Fallback: user set by the Auth middleware
			var ok bool
			claims, ok = middleware.GetUserFromContext(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(claims.UserID, claims.UserType, conn, hub, store)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
