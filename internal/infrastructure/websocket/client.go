package websocket

import (
	"log"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 256

// Client is one websocket connection. It starts unauthenticated; a valid
// bearer credential moves it to authenticated, and it never moves back
// for the connection's lifetime.
type Client struct {
	conn *websocket.Conn

	// send is never closed; writers race disconnection freely and at worst
	// hit the full-buffer drop path. done signals WritePump shutdown.
	send chan []byte
	done chan struct{}

	userID        string
	authenticated atomic.Bool
	rooms         map[string]bool
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		done:  make(chan struct{}),
		rooms: make(map[string]bool),
	}
}

func (c *Client) Authenticated() bool {
	return c.authenticated.Load()
}

func (c *Client) UserID() string {
	return c.userID
}

// authenticate transitions the connection to the authenticated state.
// The transition happens at most once.
func (c *Client) authenticate(userID string) {
	c.userID = userID
	c.authenticated.Store(true)
}

// ReadPump reads frames off the connection and hands them to onFrame.
// It owns the unregister on exit.
func (c *Client) ReadPump(m *Manager, onFrame func(client *Client, raw []byte)) {
	defer func() {
		m.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}
		onFrame(c, raw)
	}
}

// WritePump drains the send buffer onto the connection until the client
// is unregistered.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case payload := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
