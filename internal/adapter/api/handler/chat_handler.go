package handler

import (
	"github.com/labstack/echo/v4"

	"tradepost/internal/usecase"
	"tradepost/pkg/response"
	"tradepost/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createRoomRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type createRoomWithUserRequest struct {
	ProductID     string `json:"product_id" validate:"required"`
	CounterpartID string `json:"counterpart_id" validate:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=TEXT IMAGE SYSTEM"`
}

// CreateRoom opens (or returns) the room between the caller as buyer and
// the product's seller.
func (h *ChatHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, err := h.chatUseCase.CreateOrGetRoom(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

// CreateRoomWithUser opens (or returns) the room with a named counterpart;
// either party of the product may call it.
func (h *ChatHandler) CreateRoomWithUser(c echo.Context) error {
	var req createRoomWithUserRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, err := h.chatUseCase.CreateOrGetRoomWithUser(c.Request().Context(), userID, req.CounterpartID, req.ProductID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

func (h *ChatHandler) ListRooms(c echo.Context) error {
	userID := c.Get("uid").(string)

	rooms, err := h.chatUseCase.ListRoomsForUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, rooms)
}

func (h *ChatHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	room, err := h.chatUseCase.GetRoom(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

func (h *ChatHandler) DeleteRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.DeleteRoom(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"deleted": true})
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.GetRoomMessages(c.Request().Context(), userID, c.Param("id"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, pagination.PageSize, pagination.Offset)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, c.Param("id"), usecase.SendMessageInput{
		Content: req.Content,
		Type:    req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkRead clears the caller's unread state for the room and returns the
// recomputed total so clients can refresh their badge in one round trip.
func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkRead(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	total, err := h.chatUseCase.TotalUnread(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"unread_count": total})
}

func (h *ChatHandler) UnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	total, err := h.chatUseCase.TotalUnread(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"unread_count": total})
}
