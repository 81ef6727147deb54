package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// roles allowed to open a live connection
var allowedRoles = map[string]bool{
	"client":    true,
	"forwarder": true,
	"admin":     true,
	"driver":    true,
}

// Event is the JSON frame pushed to connected clients
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client represents a single connected WebSocket client
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
	Role   string
}

type delivery struct {
	message []byte
	// empty means every connected client
	recipients map[string]bool
}

// Hub maintains the set of active clients and routes events to them.
// Admins receive every event; other users only the events addressed to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan delivery
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the core dispatch loop for WebSocket events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("WebSocket client connected user=%s role=%s", client.UserID, client.Role)
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Printf("WebSocket client disconnected user=%s", client.UserID)
			}
			h.mu.Unlock()
		case d := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !d.wants(client) {
					continue
				}
				select {
				case client.Send <- d.message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (d delivery) wants(c *Client) bool {
	return len(d.recipients) == 0 || c.Role == "admin" || d.recipients[c.UserID]
}

// Push queues an event for the given users (and admins). With no users it
// goes to everyone. It never blocks the caller; a full queue drops the event.
func (h *Hub) Push(eventType string, data interface{}, userIDs ...uuid.UUID) {
	msg, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("websocket: marshal %s event: %v", eventType, err)
		return
	}

	d := delivery{message: msg}
	if len(userIDs) > 0 {
		d.recipients = make(map[string]bool, len(userIDs))
		for _, id := range userIDs {
			d.recipients[id.String()] = true
		}
	}

	select {
	case h.broadcast <- d:
	default:
		log.Printf("websocket: queue full, dropping %s event", eventType)
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.Conn.Close()
	}()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()
	for {
		// Just reading to keep connection alive
		_, _, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
	}
}

// ServeWs authenticates the token query param and upgrades the connection
func ServeWs(hub *Hub, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		log.Println("WebSocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		log.Println("WebSocket connection rejected: invalid token:", err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		log.Println("WebSocket connection rejected: invalid claims")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	role, _ := claims["role"].(string)
	userID, _ := claims["sub"].(string)
	if !allowedRoles[role] || userID == "" {
		log.Println("WebSocket connection rejected: inadequate permissions")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), UserID: userID, Role: role}
	client.Hub.register <- client

	go client.writePump()
	go client.readPump()
}
