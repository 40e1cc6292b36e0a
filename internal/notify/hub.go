package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/genmacebiz/permit-portal-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Client is a single websocket connection owned by an authenticated user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	UserID int64
	Role   models.Role
}

// Hub tracks live websocket connections and routes events to them. Owners
// are addressed individually by user id; staff and admin connections form a
// single broadcast audience.
type Hub struct {
	mu      sync.RWMutex
	owners  map[int64]map[*Client]struct{}
	staff   map[*Client]struct{}
	logger  *logrus.Logger
	closed  bool
	closeCh chan struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		owners:  make(map[int64]map[*Client]struct{}),
		staff:   make(map[*Client]struct{}),
		logger:  logger,
		closeCh: make(chan struct{}),
	}
}

// Register attaches a websocket connection to the hub and starts its
// read and write pumps. The caller hands over ownership of conn.
func (h *Hub) Register(conn *websocket.Conn, userID int64, role models.Role) *Client {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		UserID: userID,
		Role:   role,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	if role.IsStaff() {
		h.staff[client] = struct{}{}
	} else {
		room, ok := h.owners[userID]
		if !ok {
			room = make(map[*Client]struct{})
			h.owners[userID] = room
		}
		room[client] = struct{}{}
	}
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    role,
	}).Debug("Websocket client connected")

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if client.Role.IsStaff() {
		if _, ok := h.staff[client]; ok {
			delete(h.staff, client)
			close(client.send)
		}
	} else if room, ok := h.owners[client.UserID]; ok {
		if _, ok := room[client]; ok {
			delete(room, client)
			close(client.send)
		}
		if len(room) == 0 {
			delete(h.owners, client.UserID)
		}
	}
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"user_id": client.UserID,
		"role":    client.Role,
	}).Debug("Websocket client disconnected")
}

// NotifyOwner sends an event to every open connection of the given owner.
// Connections with a full outbound buffer are dropped rather than awaited.
func (h *Hub) NotifyOwner(ownerID int64, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode notification event")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.owners[ownerID] {
		if !client.enqueue(payload) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

// NotifyStaff broadcasts an event to every connected staff and admin client.
func (h *Hub) NotifyStaff(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode notification event")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.staff {
		if !client.enqueue(payload) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	h.dropSlow(slow)
}

// enqueue attempts a non-blocking send on the client's outbound buffer.
// The caller must hold the hub lock; send channels are only closed while
// the write lock is held, so the channel cannot close mid-send.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) dropSlow(clients []*Client) {
	for _, client := range clients {
		h.logger.WithFields(logrus.Fields{
			"user_id": client.UserID,
			"role":    client.Role,
		}).Warn("Dropping slow websocket client")
		h.unregister(client)
		client.conn.Close()
	}
}

// ConnectionCount reports the number of live connections, owners plus staff.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := len(h.staff)
	for _, room := range h.owners {
		count += len(room)
	}
	return count
}

// Shutdown closes all connections and rejects further registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.closeCh)

	for client := range h.staff {
		close(client.send)
		client.conn.Close()
	}
	h.staff = make(map[*Client]struct{})

	for _, room := range h.owners {
		for client := range room {
			close(client.send)
			client.conn.Close()
		}
	}
	h.owners = make(map[int64]map[*Client]struct{})
	h.mu.Unlock()
}

// readPump drains inbound frames so control messages are processed. Clients
// are not expected to send application data; anything received is discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.hub.closeCh:
			return
		}
	}
}
