package handler

import (
	"log"

	"github.com/labstack/echo/v4"

	"tradepost/internal/usecase"
	"tradepost/pkg/errors"
	"tradepost/pkg/response"
)

type PaymentHandler struct {
	paymentUseCase *usecase.PaymentUseCase
}

func NewPaymentHandler(paymentUseCase *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: paymentUseCase,
	}
}

func (h *PaymentHandler) Ready(c echo.Context) error {
	userID := c.Get("uid").(string)

	ready, err := h.paymentUseCase.Ready(c.Request().Context(), userID, c.Param("transactionId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"tid":                 ready.Tid,
		"redirect_pc_url":     ready.RedirectPCURL,
		"redirect_mobile_url": ready.RedirectMobileURL,
		"redirect_app_url":    ready.RedirectAppURL,
	})
}

// Success is the provider's approval callback; the buyer lands here with
// a pg_token after confirming the payment.
func (h *PaymentHandler) Success(c echo.Context) error {
	transactionID := c.QueryParam("transaction_id")
	pgToken := c.QueryParam("pg_token")
	if transactionID == "" || pgToken == "" {
		return response.Error(c, errors.BadRequest("transaction_id and pg_token are required", nil))
	}

	transaction, err := h.paymentUseCase.Approve(c.Request().Context(), transactionID, pgToken)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transaction)
}

// Cancel and Fail are informational: the transaction stays PENDING and
// the buyer may retry the payment.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	log.Printf("Payment: buyer cancelled at provider for transaction %s", c.QueryParam("transaction_id"))
	return response.Success(c, map[string]string{"status": "cancelled"})
}

func (h *PaymentHandler) Fail(c echo.Context) error {
	log.Printf("Payment: provider reported failure for transaction %s", c.QueryParam("transaction_id"))
	return response.Success(c, map[string]string{"status": "failed"})
}
