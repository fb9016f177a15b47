package router

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	authHandler := handler.GetAuthHandler()

	e.POST("/v1/auth/reset-token", authHandler.IssueResetToken, authMiddleware.Authenticate)
	e.POST("/v1/auth/reset-token/consume", authHandler.ConsumeResetToken)
}
