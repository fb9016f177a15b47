package router

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupChatRouter(e, authMiddleware)
	SetupTransactionRouter(e, authMiddleware)
	SetupPaymentRouter(e, authMiddleware)
	SetupAuthRouter(e, authMiddleware)
	SetupWebSocketRouter(e)
	SetupHealthRouter(e)
}
