package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tradepost/internal/infrastructure/metrics"
)

// Inbound/outbound frame types of the real-time protocol.
const (
	FrameTypeAuth        = "auth"
	FrameTypeAuthOK      = "auth_ok"
	FrameTypeJoinRoom    = "join_room"
	FrameTypeLeaveRoom   = "leave_room"
	FrameTypeSendMessage = "send_message"
	FrameTypeMarkRead    = "mark_read"
	FrameTypePing        = "ping"
	FrameTypePong        = "pong"
	FrameTypeError       = "error"
	FrameTypeMessage     = "message"
)

type Frame struct {
	Type        string `json:"type"`
	Token       string `json:"token,omitempty"`
	RoomID      string `json:"room_id,omitempty"`
	Content     string `json:"content,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// TokenVerifier validates a bearer credential and yields the user ID.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// ChatService is what the session layer needs from the chat core.
type ChatService interface {
	AuthorizeRoom(ctx context.Context, userID, roomID string) error
	PostMessage(ctx context.Context, userID, roomID, content, messageType string) error
	MarkRead(ctx context.Context, userID, roomID string) error
}

// Session dispatches inbound frames for all connections. A connection in
// the unauthenticated state may only present credentials or ping; every
// other frame is answered with an error frame and otherwise ignored.
type Session struct {
	manager  *Manager
	verifier TokenVerifier
	chat     ChatService
}

func NewSession(manager *Manager, verifier TokenVerifier, chat ChatService) *Session {
	return &Session{
		manager:  manager,
		verifier: verifier,
		chat:     chat,
	}
}

func (s *Session) HandleFrame(client *Client, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		s.sendError(client, "Invalid frame format")
		return
	}

	ctx := context.Background()

	if !client.Authenticated() {
		switch frame.Type {
		case FrameTypeAuth:
			s.handleAuth(ctx, client, frame)
		case FrameTypePing:
			s.send(client, Frame{Type: FrameTypePong})
		default:
			metrics.IncWSEvent("rejected_unauthenticated")
			s.sendError(client, "Authentication required")
		}
		return
	}

	switch frame.Type {
	case FrameTypeAuth:
		// Already authenticated; the state never downgrades, so a repeated
		// handshake is acknowledged and otherwise ignored.
		s.send(client, Frame{Type: FrameTypeAuthOK})

	case FrameTypePing:
		s.send(client, Frame{Type: FrameTypePong})

	case FrameTypeJoinRoom:
		if err := s.chat.AuthorizeRoom(ctx, client.UserID(), frame.RoomID); err != nil {
			log.Printf("WebSocket: join rejected for user %s room %s: %v", client.UserID(), frame.RoomID, err)
			s.sendError(client, "Cannot join room")
			return
		}
		s.manager.JoinRoom(frame.RoomID, client)

	case FrameTypeLeaveRoom:
		s.manager.LeaveRoom(frame.RoomID, client)

	case FrameTypeSendMessage:
		if err := s.chat.PostMessage(ctx, client.UserID(), frame.RoomID, frame.Content, frame.MessageType); err != nil {
			log.Printf("WebSocket: send failed for user %s room %s: %v", client.UserID(), frame.RoomID, err)
			s.sendError(client, "Failed to send message")
		}

	case FrameTypeMarkRead:
		if err := s.chat.MarkRead(ctx, client.UserID(), frame.RoomID); err != nil {
			log.Printf("WebSocket: mark read failed for user %s room %s: %v", client.UserID(), frame.RoomID, err)
			s.sendError(client, "Failed to mark room as read")
		}

	default:
		s.sendError(client, "Unknown frame type")
	}
}

func (s *Session) handleAuth(ctx context.Context, client *Client, frame Frame) {
	if frame.Token == "" {
		metrics.IncWSEvent("auth_failed")
		s.sendError(client, "Credential required")
		return
	}

	userID, err := s.verifier.Verify(ctx, frame.Token)
	if err != nil {
		// Invalid credential: the connection stays unauthenticated but alive.
		metrics.IncWSEvent("auth_failed")
		s.sendError(client, "Invalid credential")
		return
	}

	client.authenticate(userID)
	s.manager.indexUser(client)
	metrics.IncWSEvent("auth_ok")
	log.Printf("WebSocket: client authenticated: %s", userID)

	s.send(client, Frame{Type: FrameTypeAuthOK})
}

func (s *Session) send(client *Client, frame Frame) {
	frame.Timestamp = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
	}
}

func (s *Session) sendError(client *Client, message string) {
	s.send(client, Frame{Type: FrameTypeError, Content: message})
}
