package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	users map[string]string
}

func (v *stubVerifier) Verify(ctx context.Context, token string) (string, error) {
	if uid, ok := v.users[token]; ok {
		return uid, nil
	}
	return "", errors.New("invalid token")
}

type stubChatService struct {
	authorizeErr error
	posted       []string
	marked       []string
}

func (s *stubChatService) AuthorizeRoom(ctx context.Context, userID, roomID string) error {
	return s.authorizeErr
}

func (s *stubChatService) PostMessage(ctx context.Context, userID, roomID, content, messageType string) error {
	s.posted = append(s.posted, content)
	return nil
}

func (s *stubChatService) MarkRead(ctx context.Context, userID, roomID string) error {
	s.marked = append(s.marked, roomID)
	return nil
}

func newSessionFixture(chat *stubChatService) (*Session, *Manager) {
	manager := NewManager()
	verifier := &stubVerifier{users: map[string]string{"good-token": "user-1"}}
	return NewSession(manager, verifier, chat), manager
}

func frameOf(t *testing.T, client *Client) Frame {
	t.Helper()
	select {
	case raw := <-client.send:
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("expected a frame on the client's send buffer")
		return Frame{}
	}
}

func marshalFrame(t *testing.T, frame Frame) []byte {
	t.Helper()
	raw, err := json.Marshal(frame)
	require.NoError(t, err)
	return raw
}

func TestUnauthenticatedFramesAreRejected(t *testing.T) {
	chat := &stubChatService{}
	session, manager := newSessionFixture(chat)

	client := NewClient(nil)
	manager.Register(client)

	for _, frameType := range []string{FrameTypeJoinRoom, FrameTypeSendMessage, FrameTypeMarkRead} {
		session.HandleFrame(client, marshalFrame(t, Frame{Type: frameType, RoomID: "room-1", Content: "hi"}))

		reply := frameOf(t, client)
		assert.Equal(t, FrameTypeError, reply.Type)
	}

	assert.Empty(t, chat.posted)
	assert.False(t, client.Authenticated())
}

func TestPingAllowedBeforeAuth(t *testing.T) {
	session, manager := newSessionFixture(&stubChatService{})

	client := NewClient(nil)
	manager.Register(client)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypePing}))
	assert.Equal(t, FrameTypePong, frameOf(t, client).Type)
}

func TestAuthHandshake(t *testing.T) {
	session, manager := newSessionFixture(&stubChatService{})

	client := NewClient(nil)
	manager.Register(client)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "good-token"}))

	assert.Equal(t, FrameTypeAuthOK, frameOf(t, client).Type)
	assert.True(t, client.Authenticated())
	assert.Equal(t, "user-1", client.UserID())
}

func TestInvalidCredentialKeepsConnectionUnauthenticated(t *testing.T) {
	session, manager := newSessionFixture(&stubChatService{})

	client := NewClient(nil)
	manager.Register(client)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "bad-token"}))
	assert.Equal(t, FrameTypeError, frameOf(t, client).Type)
	assert.False(t, client.Authenticated())

	// The connection stays usable; a later valid handshake succeeds.
	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "good-token"}))
	assert.Equal(t, FrameTypeAuthOK, frameOf(t, client).Type)
	assert.True(t, client.Authenticated())
}

func TestRepeatedAuthNeverDowngrades(t *testing.T) {
	session, manager := newSessionFixture(&stubChatService{})

	client := NewClient(nil)
	manager.Register(client)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "good-token"}))
	frameOf(t, client)

	// A repeated handshake, even a malformed one, is acknowledged and the
	// state stays authenticated.
	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "bad-token"}))
	assert.Equal(t, FrameTypeAuthOK, frameOf(t, client).Type)
	assert.True(t, client.Authenticated())
	assert.Equal(t, "user-1", client.UserID())
}

func TestAuthenticatedFrameDispatch(t *testing.T) {
	chat := &stubChatService{}
	session, manager := newSessionFixture(chat)

	client := NewClient(nil)
	manager.Register(client)
	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "good-token"}))
	frameOf(t, client)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeJoinRoom, RoomID: "room-1"}))
	assert.Equal(t, 1, manager.RoomSubscribers("room-1"))

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeSendMessage, RoomID: "room-1", Content: "hello"}))
	assert.Equal(t, []string{"hello"}, chat.posted)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeMarkRead, RoomID: "room-1"}))
	assert.Equal(t, []string{"room-1"}, chat.marked)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeLeaveRoom, RoomID: "room-1"}))
	assert.Equal(t, 0, manager.RoomSubscribers("room-1"))
}

func TestJoinRoomRequiresAuthorization(t *testing.T) {
	chat := &stubChatService{authorizeErr: errors.New("not a participant")}
	session, manager := newSessionFixture(chat)

	client := NewClient(nil)
	manager.Register(client)
	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeAuth, Token: "good-token"}))
	frameOf(t, client)

	session.HandleFrame(client, marshalFrame(t, Frame{Type: FrameTypeJoinRoom, RoomID: "room-1"}))
	assert.Equal(t, FrameTypeError, frameOf(t, client).Type)
	assert.Equal(t, 0, manager.RoomSubscribers("room-1"))
}

func TestMalformedFrame(t *testing.T) {
	session, manager := newSessionFixture(&stubChatService{})

	client := NewClient(nil)
	manager.Register(client)

	session.HandleFrame(client, []byte("{not json"))
	assert.Equal(t, FrameTypeError, frameOf(t, client).Type)
}
