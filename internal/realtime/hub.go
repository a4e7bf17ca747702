// Package realtime pushes kitchen events to connected dashboards over websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Event types
const (
	EventOrderCreated = "order_created"
	EventOrderStatus  = "order_status"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a slow client may fall behind before it is dropped
	sendBuffer = 16
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

// Hub holds the connected kitchen clients
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

// NewHub creates an empty hub. Browsers must connect from the serving host.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register adds a connection to the broadcast set and starts its writer
func (h *Hub) Register(conn *websocket.Conn, role string) {
	go h.writePump(h.add(conn, role))
}

func (h *Hub) add(conn *websocket.Conn, role string) *client {
	c := &client{conn: conn, role: role, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = c
	return c
}

// Unregister removes and closes a connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(conn)
}

// drop must be called with h.mu held
func (h *Hub) drop(conn *websocket.Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
		conn.Close()
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues an event for every client without waiting on the network.
// Clients whose queue is full are dropped.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		log.WithError(err).Error("Error marshaling realtime message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			log.WithField("role", c.role).Warn("Dropping slow realtime client")
			h.drop(conn)
		}
	}
	log.WithFields(log.Fields{"event": event, "clients": len(h.clients)}).Debug("Broadcast realtime event")
}

// writePump is the only writer of a connection
func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.WithError(err).Warn("Dropping realtime client")
			h.Unregister(c.conn)
			return
		}
	}
}

// Serve upgrades the request and keeps the connection registered until the client goes away
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, role string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.Register(conn, role)
	defer h.Unregister(conn)

	// clients only listen; reading detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
