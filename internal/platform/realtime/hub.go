// Package realtime provides WebSocket rooms for therapy chat and WebRTC
// signaling. Clients join a named room and every message they send is
// relayed to the other members of that room.
package realtime

import (
	"sync"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single connection inside a room.
type Client struct {
	ID   string
	Room string
	Send chan []byte
	conn Conn
}

// Hub is a room-keyed connection registry. All operations are thread-safe.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{})}
}

// Join adds a client to its room, creating the room on first use.
func (h *Hub) Join(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[client.Room] == nil {
		h.rooms[client.Room] = make(map[*Client]struct{})
	}
	h.rooms[client.Room][client] = struct{}{}
}

// Leave removes a client from its room and closes the client's Send
// channel. Empty rooms are dropped from the registry.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[client.Room]
	if !ok {
		return
	}
	if _, ok := members[client]; !ok {
		return
	}

	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, client.Room)
	}
	close(client.Send)
}

// Broadcast relays a message to every member of the room except the sender.
func (h *Hub) Broadcast(room string, message []byte, sender *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		if client == sender {
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// RoomCount returns the number of active rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// MemberCount returns the number of clients in a room.
func (h *Hub) MemberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
