package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

type ChatRepository interface {
	// CreateRoom persists a new room keyed by (productId, buyerId). It must
	// fail with a CONFLICT error when a room for that pair already exists so
	// concurrent first-contact races resolve to a single row.
	CreateRoom(ctx context.Context, room *entity.ChatRoom) error
	GetRoomByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	GetRoomByProductAndBuyer(ctx context.Context, productID, buyerID string) (*entity.ChatRoom, error)
	ListRoomsByUserID(ctx context.Context, userID string) ([]*entity.ChatRoom, error)
	DeleteRoom(ctx context.Context, id string) error

	// SetLastMessage updates the room preview and atomically increments the
	// unread counter of the sender's counterpart in the same write.
	SetLastMessage(ctx context.Context, room *entity.ChatRoom, message *entity.Message) error
	// ResetUnread marks all messages not authored by readerID as read and
	// zeroes readerID's unread counter. Idempotent.
	ResetUnread(ctx context.Context, room *entity.ChatRoom, readerID string) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessagesByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error)
}
