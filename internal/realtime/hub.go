package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	types "github.com/yungbote/deskchat-backend/internal/domain"
	"github.com/yungbote/deskchat-backend/internal/platform/logger"
)

// Hub keeps room membership for the local process. Delivery is
// non-blocking: a client whose buffer is full misses the message.
type Hub struct {
	mu      sync.RWMutex
	logger  *logger.Logger
	rooms   map[string]map[*Client]bool
	clients map[uuid.UUID]*Client
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:  log.With("component", "RealtimeHub"),
		rooms:   make(map[string]map[*Client]bool),
		clients: make(map[uuid.UUID]*Client),
	}
}

func (hub *Hub) NewClient(p types.Principal) *Client {
	c := &Client{
		ID:        uuid.New(),
		Principal: p,
		Rooms:     make(map[string]bool),
		Outbound:  make(chan Message, outboundBuffer),
		done:      make(chan struct{}),
	}
	c.Logger = hub.logger.With("client_id", c.ID.String(), "user_id", p.ID.String())

	hub.mu.Lock()
	hub.clients[c.ID] = c
	hub.mu.Unlock()
	return c
}

// Client looks up a live client by connection id.
func (hub *Hub) Client(id uuid.UUID) (*Client, bool) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	c, ok := hub.clients[id]
	return c, ok
}

func (hub *Hub) Join(client *Client, room string) {
	room = strings.TrimSpace(room)
	if client == nil || room == "" || room == RoomAll {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	if _, live := hub.clients[client.ID]; !live {
		return
	}

	client.Rooms[room] = true
	members, ok := hub.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		hub.rooms[room] = members
	}
	members[client] = true

	hub.logger.Debug("client joined room", "client_id", client.ID, "room", room)
}

func (hub *Hub) Leave(client *Client, room string) {
	room = strings.TrimSpace(room)
	if client == nil || room == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	delete(client.Rooms, room)
	if members, ok := hub.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(hub.rooms, room)
		}
	}
	hub.logger.Debug("client left room", "client_id", client.ID, "room", room)
}

func (hub *Hub) InRoom(client *Client, room string) bool {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return client != nil && client.Rooms[room]
}

// Members returns how many local clients are in room.
func (hub *Hub) Members(room string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.rooms[room])
}

func (hub *Hub) Broadcast(msg Message) {
	if msg.Room == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Room == RoomAll {
		for _, c := range hub.clients {
			hub.deliver(c, msg)
		}
		return
	}
	for c := range hub.rooms[msg.Room] {
		hub.deliver(c, msg)
	}
}

func (hub *Hub) deliver(c *Client, msg Message) {
	if msg.Exclude != "" && msg.Exclude == c.ID.String() {
		return
	}
	select {
	case <-c.done:
	case c.Outbound <- msg:
	default:
		hub.logger.Warn("dropping realtime message; outbound buffer full", "client_id", c.ID, "event", msg.Event)
	}
}

// send delivers directly to one client, bypassing rooms.
func (hub *Hub) send(c *Client, msg Message) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if _, live := hub.clients[c.ID]; !live {
		return
	}
	hub.deliver(c, msg)
}

// CloseClient removes the client from every room. It is safe to call more
// than once.
func (hub *Hub) CloseClient(client *Client) {
	if client == nil {
		return
	}
	client.closeOnce.Do(func() {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		close(client.done)
		for room := range client.Rooms {
			if members, ok := hub.rooms[room]; ok {
				delete(members, client)
				if len(members) == 0 {
					delete(hub.rooms, room)
				}
			}
		}
		client.Rooms = make(map[string]bool)
		delete(hub.clients, client.ID)
		close(client.Outbound)
		hub.logger.Debug("client closed", "client_id", client.ID)
	})
}

// CloseAll drops every connected client. Streams and sockets end on their own.
func (hub *Hub) CloseAll() {
	hub.mu.RLock()
	clients := make([]*Client, 0, len(hub.clients))
	for _, c := range hub.clients {
		clients = append(clients, c)
	}
	hub.mu.RUnlock()
	for _, c := range clients {
		hub.CloseClient(c)
	}
}
