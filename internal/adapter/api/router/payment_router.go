package router

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"
)

func SetupPaymentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	paymentHandler := handler.GetPaymentHandler()

	payments := e.Group("/v1/payments")

	payments.POST("/ready/:transactionId", paymentHandler.Ready, authMiddleware.Authenticate)

	// Provider redirect callbacks carry no bearer token; identity is the
	// (transaction_id, pg_token) pair the provider echoes back.
	payments.GET("/success", paymentHandler.Success)
	payments.GET("/cancel", paymentHandler.Cancel)
	payments.GET("/fail", paymentHandler.Fail)
}
