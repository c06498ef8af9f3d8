package relay

import (
	"context"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Room name prefixes. User rooms reach every session of one account;
// conversation rooms reach the viewers of one two-party chat.
const (
	userRoomPrefix         = "user-"
	conversationRoomPrefix = "conversation-"
)

// UserRoom returns the room name for a user's phone number.
func UserRoom(phone string) string {
	return userRoomPrefix + phone
}

// ConversationRoom returns the room name for a conversation identifier.
func ConversationRoom(id string) string {
	return conversationRoomPrefix + id
}

// Conn is the subset of a WebSocket connection the hub writes to.
// *websocket.Conn satisfies it; tests substitute a recorder.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents one connected browser session.
type Client struct {
	ID        string
	UserPhone string
	Conn      Conn
}

// broadcastRequest carries one pre-encoded frame to every member of a room
// except the origin connection.
type broadcastRequest struct {
	room      string
	excludeID string
	data      []byte
}

// Hub maintains room memberships and fans frames out to room members. It
// persists nothing and never inspects the payloads it forwards. Broadcast
// requests are serialized through one loop, so frames from the same origin
// reach each listener in the order sent; membership mutations (register,
// unregister, join, leave) take the lock directly and are visible the
// moment the call returns.
type Hub struct {
	clients    map[string]*Client          // connection ID -> client
	rooms      map[string]map[string]bool  // room name -> set of connection IDs
	membership map[string]map[string]bool  // connection ID -> set of room names
	broadcast  chan broadcastRequest
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		membership: make(map[string]map[string]bool),
		broadcast:  make(chan broadcastRequest, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It accepts a context for graceful shutdown.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Println("[relay] Shutting down...")
			h.closeAllClients()
			close(h.done)
			return
		case req := <-h.broadcast:
			h.handleBroadcast(req)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Register adds a client to the hub. The client is a room-join target as
// soon as Register returns, so a JoinRoom issued right after cannot be
// lost.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.membership[client.ID] = make(map[string]bool)
	log.Printf("[relay] Client %s (%s) registered", client.ID, client.UserPhone)
}

// Unregister removes a client and all of its room memberships.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	for room := range h.membership[client.ID] {
		h.leaveRoomLocked(client.ID, room)
	}
	delete(h.membership, client.ID)
	delete(h.clients, client.ID)
	log.Printf("[relay] Client %s unregistered", client.ID)
}

// Broadcast queues data for delivery to every member of room except the
// connection identified by excludeID. Broadcasting to an empty or unknown
// room is a no-op.
func (h *Hub) Broadcast(room, excludeID string, data []byte) {
	h.broadcast <- broadcastRequest{room: room, excludeID: excludeID, data: data}
}

// BroadcastAll queues data for delivery to every connected client except the
// origin connection.
func (h *Hub) BroadcastAll(excludeID string, data []byte) {
	h.broadcast <- broadcastRequest{excludeID: excludeID, data: data}
}

// JoinRoom adds a connection to a room. Joining a room twice is harmless.
func (h *Hub) JoinRoom(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[clientID]; !ok {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][clientID] = true
	if h.membership[clientID] == nil {
		h.membership[clientID] = make(map[string]bool)
	}
	h.membership[clientID][room] = true
	log.Printf("[relay] Client %s joined room %s", clientID, room)
}

// LeaveRoom removes a connection from a room. Leaving a room the connection
// is not in is harmless.
func (h *Hub) LeaveRoom(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoomLocked(clientID, room)
	log.Printf("[relay] Client %s left room %s", clientID, room)
}

func (h *Hub) leaveRoomLocked(clientID, room string) {
	if h.rooms[room] != nil {
		delete(h.rooms[room], clientID)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	if h.membership[clientID] != nil {
		delete(h.membership[clientID], room)
	}
}

func (h *Hub) handleBroadcast(req broadcastRequest) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if req.room == "" {
		for clientID, client := range h.clients {
			if clientID == req.excludeID {
				continue
			}
			h.sendToClient(client, req.data)
		}
		return
	}

	members, ok := h.rooms[req.room]
	if !ok {
		return
	}
	for clientID := range members {
		if clientID == req.excludeID {
			continue
		}
		client, ok := h.clients[clientID]
		if !ok {
			continue
		}
		h.sendToClient(client, req.data)
	}
}

func (h *Hub) sendToClient(client *Client, data []byte) {
	if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		// One broken connection must not affect the rest of the room.
		log.Printf("[relay] Failed to send to client %s: %v", client.ID, err)
	}
}

// closeAllClients closes every connection and drops all state.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		_ = client.Conn.Close()
	}
	h.clients = make(map[string]*Client)
	h.rooms = make(map[string]map[string]bool)
	h.membership = make(map[string]map[string]bool)
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// RoomMemberCount returns the number of connections in a room.
func (h *Hub) RoomMemberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
