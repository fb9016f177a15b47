package router

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/adapter/api/handler"
)

func SetupWebSocketRouter(e *echo.Echo) {
	wsHandler := handler.GetWebSocketHandler()

	// Unauthenticated on purpose: credentials are presented in-channel.
	e.GET("/ws", wsHandler.HandleWebSocket)
}
