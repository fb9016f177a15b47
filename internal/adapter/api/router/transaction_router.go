package router

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"
)

func SetupTransactionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	transactionHandler := handler.GetTransactionHandler()

	e.POST("/v1/purchase", transactionHandler.CreateTransaction, authMiddleware.Authenticate)

	transactions := e.Group("/v1/transactions", authMiddleware.Authenticate)

	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.POST("/:id/complete", transactionHandler.CompleteTransaction)
	transactions.POST("/:id/cancel", transactionHandler.CancelTransaction)
	transactions.PATCH("/:id/depositor", transactionHandler.UpdateDepositor)
}
