package handler

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/usecase"
	"tradepost/pkg/response"
)

// AuthHandler exposes the durable reset-token flow. Tokens are issued to
// the authenticated caller and redeemed anonymously.
type AuthHandler struct {
	authTokenUseCase *usecase.AuthTokenUseCase
}

var authHandler *AuthHandler

func NewAuthHandler(authTokenUseCase *usecase.AuthTokenUseCase) *AuthHandler {
	return &AuthHandler{
		authTokenUseCase: authTokenUseCase,
	}
}

func SetupAuthHandler(authTokenUseCase *usecase.AuthTokenUseCase) {
	authHandler = NewAuthHandler(authTokenUseCase)
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

type consumeTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *AuthHandler) IssueResetToken(c echo.Context) error {
	userID := c.Get("uid").(string)

	token, err := h.authTokenUseCase.Issue(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, token)
}

func (h *AuthHandler) ConsumeResetToken(c echo.Context) error {
	var req consumeTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID, err := h.authTokenUseCase.Consume(c.Request().Context(), req.Token)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"user_id": userID})
}
