package handler

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/usecase"
	"tradepost/pkg/response"
	"tradepost/pkg/utils"
)

type TransactionHandler struct {
	transactionUseCase *usecase.TransactionUseCase
}

func NewTransactionHandler(transactionUseCase *usecase.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
	}
}

type createTransactionRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	DepositorName string `json:"depositor_name,omitempty"`
}

type updateDepositorRequest struct {
	DepositorName string `json:"depositor_name" validate:"required"`
}

func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	transaction, err := h.transactionUseCase.CreateTransaction(c.Request().Context(), userID, usecase.CreateTransactionInput{
		ProductID:     req.ProductID,
		DepositorName: req.DepositorName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, transaction)
}

func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := c.Get("uid").(string)

	transaction, err := h.transactionUseCase.GetTransaction(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transaction)
}

func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID := c.Get("uid").(string)
	role := c.QueryParam("role")
	pagination := utils.GetPaginationParams(c)

	transactions, total, err := h.transactionUseCase.ListTransactions(c.Request().Context(), userID, role, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, transactions, total, pagination.PageSize, pagination.Offset)
}

func (h *TransactionHandler) CompleteTransaction(c echo.Context) error {
	userID := c.Get("uid").(string)

	transaction, err := h.transactionUseCase.CompleteTransaction(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transaction)
}

func (h *TransactionHandler) CancelTransaction(c echo.Context) error {
	userID := c.Get("uid").(string)

	transaction, err := h.transactionUseCase.CancelTransaction(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transaction)
}

func (h *TransactionHandler) UpdateDepositor(c echo.Context) error {
	var req updateDepositorRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	transaction, err := h.transactionUseCase.UpdateDepositor(c.Request().Context(), c.Param("id"), usecase.UpdateDepositorInput{
		DepositorName: req.DepositorName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, transaction)
}
