package services

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// OrderEvent is a message pushed to subscribed clients
type OrderEvent struct {
	Type       string  `json:"type"`
	OrderID    string  `json:"orderId,omitempty"`
	TotalPrice float64 `json:"totalPrice,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// eventClient represents one connected websocket subscriber
type eventClient struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan OrderEvent
	hub    *eventHub
}

// eventHub maintains the set of active clients, keyed by user
type eventHub struct {
	clients    map[*eventClient]bool
	users      map[string]map[*eventClient]bool
	register   chan *eventClient
	unregister chan *eventClient
	mutex      sync.RWMutex
}

// OrderEventsService pushes order status changes to connected clients
type OrderEventsService struct {
	hub      *eventHub
	upgrader websocket.Upgrader
}

// NewOrderEventsService creates the events service and starts its hub
func NewOrderEventsService() *OrderEventsService {
	hub := &eventHub{
		clients:    make(map[*eventClient]bool),
		users:      make(map[string]map[*eventClient]bool),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
	}

	service := &OrderEventsService{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	go hub.run()

	return service
}

func (h *eventHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			if h.users[client.userID] == nil {
				h.users[client.userID] = make(map[*eventClient]bool)
			}
			h.users[client.userID][client] = true
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				delete(h.users[client.userID], client)
				if len(h.users[client.userID]) == 0 {
					delete(h.users, client.userID)
				}
				close(client.send)
			}
			h.mutex.Unlock()
		}
	}
}

// HandleWebSocket upgrades an authenticated request to a websocket
// subscription. The auth middleware must have set userID in the context.
func (s *OrderEventsService) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "User not authenticated",
		})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &eventClient{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan OrderEvent, 16),
		hub:    s.hub,
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// NotifyOrderPaid pushes an order.paid event to all of a user's connections
func (s *OrderEventsService) NotifyOrderPaid(userID, orderID string, totalPrice float64) {
	event := OrderEvent{
		Type:       "order.paid",
		OrderID:    orderID,
		TotalPrice: totalPrice,
	}

	s.hub.mutex.RLock()
	defer s.hub.mutex.RUnlock()

	for client := range s.hub.users[userID] {
		select {
		case client.send <- event:
		default:
			// Slow consumer; drop the event rather than block the webhook
		}
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

func (c *eventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *eventClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Subscribers never send application messages; drain until close
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
