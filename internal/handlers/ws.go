package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/campushub/campushub/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	eventClients   = make(map[string]map[*websocket.Conn]bool)
	eventClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastRegistration pushes the new attendee count to every admin
// console subscribed to this event's live feed.
func BroadcastRegistration(eventID string, attendeeCount int64) {
	eventClientsMu.RLock()
	clients, exists := eventClients[eventID]
	if !exists || len(clients) == 0 {
		eventClientsMu.RUnlock()
		return
	}

	// Copy the client set so the lock is not held while sending
	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	eventClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]interface{}{
			"type":           "registration",
			"event_id":       eventID,
			"attendee_count": attendeeCount,
		})

		if err != nil {
			log.Printf("Failed to broadcast registration to client: %v", err)
			eventClientsMu.Lock()
			if clients, exists := eventClients[eventID]; exists {
				delete(clients, conn)
				if len(clients) == 0 {
					delete(eventClients, eventID)
				}
			}
			eventClientsMu.Unlock()
			conn.Close()
		}
	}
}

// LiveRegistrations upgrades the connection and subscribes the caller to
// registration pushes for one event. Admin-gated by the router.
func LiveRegistrations(c *gin.Context) {
	eventID := c.Param("id")

	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "msg": "Event ID is required"})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	eventClientsMu.Lock()
	if eventClients[eventID] == nil {
		eventClients[eventID] = make(map[*websocket.Conn]bool)
	}
	eventClients[eventID][conn] = true
	eventClientsMu.Unlock()

	defer func() {
		eventClientsMu.Lock()

		if clients, exists := eventClients[eventID]; exists {
			delete(clients, conn)

			if len(clients) == 0 {
				delete(eventClients, eventID)
			}
		}

		eventClientsMu.Unlock()
		conn.Close()

		log.Printf("WebSocket connection closed for event %s", eventID)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		log.Printf("Failed to set write deadline for welcome message: %v", err)
		return
	}

	err = conn.WriteJSON(map[string]string{
		"type":     "connected",
		"event_id": eventID,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Printf("Failed to set write deadline for event %s: %v", eventID, err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Ping failed for event %s: %v", eventID, err)
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for event %s: %v", eventID, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for event %s: %v", eventID, err)
			}
			break
		}
	}
}
