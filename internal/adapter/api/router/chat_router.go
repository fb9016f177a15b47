package router

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chat := e.Group("/v1/chat", authMiddleware.Authenticate)

	chat.POST("/rooms", chatHandler.CreateRoom)
	chat.POST("/rooms/with-user", chatHandler.CreateRoomWithUser)
	chat.GET("/rooms", chatHandler.ListRooms)
	chat.GET("/rooms/:id", chatHandler.GetRoom)
	chat.DELETE("/rooms/:id", chatHandler.DeleteRoom)
	chat.GET("/rooms/:id/messages", chatHandler.ListMessages)
	chat.POST("/rooms/:id/messages", chatHandler.SendMessage)
	chat.PATCH("/rooms/:id/read", chatHandler.MarkRead)
	chat.GET("/unread-count", chatHandler.UnreadCount)
}
