package websocket

import (
	"log"
	"sync"

	"tradepost/internal/infrastructure/metrics"
)

// Manager tracks connected clients and their room subscriptions. Fan-out
// never blocks the caller: a subscriber whose send buffer is full simply
// misses the frame (delivery is at-most-once per connected subscriber).
type Manager struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	users   map[string]map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[*Client]bool),
		users:   make(map[string]map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register adds a freshly accepted connection. The client starts
// unauthenticated; it joins the user index only after a successful
// credential handshake.
func (m *Manager) Register(client *Client) {
	m.mu.Lock()
	m.clients[client] = true
	m.mu.Unlock()

	metrics.IncWSConnections()
	log.Printf("WebSocket: client connected (awaiting auth)")
}

func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	if _, ok := m.clients[client]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, client)

	if client.userID != "" {
		if conns, ok := m.users[client.userID]; ok {
			delete(conns, client)
			if len(conns) == 0 {
				delete(m.users, client.userID)
			}
		}
	}

	for roomID := range client.rooms {
		if conns, ok := m.rooms[roomID]; ok {
			delete(conns, client)
			if len(conns) == 0 {
				delete(m.rooms, roomID)
			}
		}
	}
	m.mu.Unlock()

	// Only signal shutdown; client.send stays open so concurrent
	// broadcasters can never hit a closed channel. The early return above
	// guarantees done closes at most once.
	close(client.done)
	metrics.DecWSConnections()
	log.Printf("WebSocket: client disconnected: %s", client.userID)
}

// indexUser is called once, when a client's handshake succeeds.
func (m *Manager) indexUser(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[client.userID]; !ok {
		m.users[client.userID] = make(map[*Client]bool)
	}
	m.users[client.userID][client] = true
}

func (m *Manager) JoinRoom(roomID string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; !ok {
		m.rooms[roomID] = make(map[*Client]bool)
	}
	m.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (m *Manager) LeaveRoom(roomID string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conns, ok := m.rooms[roomID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(m.rooms, roomID)
		}
	}
	delete(client.rooms, roomID)
}

// BroadcastToRoom fans a payload out to every subscriber of the room,
// optionally excluding one user (typically the sender). Returns the
// number of connections the payload was handed to.
func (m *Manager) BroadcastToRoom(roomID string, payload []byte, excludeUserID string) int {
	m.mu.RLock()
	conns := make([]*Client, 0, len(m.rooms[roomID]))
	for client := range m.rooms[roomID] {
		conns = append(conns, client)
	}
	m.mu.RUnlock()

	delivered := 0
	for _, client := range conns {
		if excludeUserID != "" && client.userID == excludeUserID {
			continue
		}
		select {
		case client.send <- payload:
			delivered++
			metrics.IncWSEvent("broadcast")
		default:
			log.Printf("WebSocket: dropping frame for slow client %s in room %s", client.userID, roomID)
			metrics.IncWSEvent("dropped")
		}
	}
	return delivered
}

// SendToUser delivers a payload to every connection of one user.
func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mu.RLock()
	conns := make([]*Client, 0, len(m.users[userID]))
	for client := range m.users[userID] {
		conns = append(conns, client)
	}
	m.mu.RUnlock()

	for _, client := range conns {
		select {
		case client.send <- payload:
		default:
			log.Printf("WebSocket: dropping frame for slow client %s", userID)
		}
	}
}

// RoomSubscribers reports how many connections are attached to a room.
func (m *Manager) RoomSubscribers(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[roomID])
}
