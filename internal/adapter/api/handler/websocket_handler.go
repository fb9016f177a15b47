package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "tradepost/internal/infrastructure/websocket"
	"tradepost/pkg/errors"
)

// WebSocketHandler upgrades connections into the session manager. The
// connection is accepted unauthenticated; credentials are presented
// in-channel via an auth frame.
type WebSocketHandler struct {
	wsManager *ws.Manager
	session   *ws.Session
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the frontend origins before exposing publicly
	},
}

var webSocketHandler *WebSocketHandler

func NewWebSocketHandler(wsManager *ws.Manager, session *ws.Session) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		session:   session,
	}
}

func SetupWebSocketHandler(wsManager *ws.Manager, session *ws.Session) {
	webSocketHandler = NewWebSocketHandler(wsManager, session)
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(conn)
	h.wsManager.Register(client)

	go client.WritePump()
	go client.ReadPump(h.wsManager, h.session.HandleFrame)

	return nil
}
