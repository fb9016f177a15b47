package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/infrastructure/notification"
	ws "tradepost/internal/infrastructure/websocket"
	"tradepost/pkg/errors"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	wsManager   *ws.Manager
	publisher   notification.Publisher
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	wsManager *ws.Manager,
	publisher notification.Publisher,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		wsManager:   wsManager,
		publisher:   publisher,
	}
}

type CreateRoomInput struct {
	ProductID string `json:"product_id" validate:"required"`
}

type CreateRoomWithUserInput struct {
	ProductID      string `json:"product_id" validate:"required"`
	CounterpartID  string `json:"counterpart_id" validate:"required"`
	InitialMessage string `json:"initial_message,omitempty"`
}

// CreateOrGetRoom returns the single room for (productID, buyerID),
// creating it when it does not exist yet. Two callers racing on the same
// pair both end up with the same room.
func (uc *ChatUseCase) CreateOrGetRoom(ctx context.Context, buyerID, productID string) (*entity.ChatRoom, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.SellerID == buyerID {
		return nil, errors.SelfChat("Cannot open a chat with yourself")
	}

	return uc.createOrGet(ctx, product, buyerID)
}

// CreateOrGetRoomWithUser is the symmetric variant: either party may name
// the other, and the room resolves to the same (product, buyer) identity.
func (uc *ChatUseCase) CreateOrGetRoomWithUser(ctx context.Context, requesterID, counterpartID, productID string) (*entity.ChatRoom, error) {
	if requesterID == counterpartID {
		return nil, errors.SelfChat("Cannot open a chat with yourself")
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByID(ctx, counterpartID); err != nil {
		return nil, err
	}

	// Either party may have been stored as the room's buyer historically,
	// so probe both orientations before creating anything.
	for _, candidate := range []string{requesterID, counterpartID} {
		room, err := uc.chatRepo.GetRoomByProductAndBuyer(ctx, product.ID, candidate)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
	}

	var buyerID string
	switch product.SellerID {
	case requesterID:
		buyerID = counterpartID
	case counterpartID:
		buyerID = requesterID
	default:
		return nil, errors.Forbidden("Neither party sells this product", nil)
	}

	return uc.createOrGet(ctx, product, buyerID)
}

func (uc *ChatUseCase) createOrGet(ctx context.Context, product *entity.Product, buyerID string) (*entity.ChatRoom, error) {
	existing, err := uc.chatRepo.GetRoomByProductAndBuyer(ctx, product.ID, buyerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	now := time.Now()
	room := &entity.ChatRoom{
		ProductID: product.ID,
		SellerID:  product.SellerID,
		BuyerID:   buyerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.chatRepo.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, "CONFLICT") {
			// Lost the creation race; the winner's room is the room.
			log.Printf("CreateOrGetRoom: lost creation race for product %s buyer %s", product.ID, buyerID)
			return uc.chatRepo.GetRoomByProductAndBuyer(ctx, product.ID, buyerID)
		}
		return nil, err
	}

	log.Printf("CreateOrGetRoom: created room %s (product %s, buyer %s)", room.ID, product.ID, buyerID)
	return room, nil
}

// ListRoomsForUser returns the caller's rooms, most recently active first;
// rooms without any message yet sort after the rest by creation time.
func (uc *ChatUseCase) ListRoomsForUser(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	return uc.chatRepo.ListRoomsByUserID(ctx, userID)
}

func (uc *ChatUseCase) GetRoom(ctx context.Context, userID, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.chatRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("Not a participant of this chat room", nil)
	}
	return room, nil
}

func (uc *ChatUseCase) GetRoomMessages(ctx context.Context, userID, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetRoom(ctx, userID, roomID); err != nil {
		return nil, 0, err
	}
	return uc.chatRepo.ListMessagesByRoom(ctx, roomID, limit, offset)
}

func (uc *ChatUseCase) DeleteRoom(ctx context.Context, userID, roomID string) error {
	room, err := uc.GetRoom(ctx, userID, roomID)
	if err != nil {
		return err
	}

	if err := uc.chatRepo.DeleteRoom(ctx, room.ID); err != nil {
		return err
	}

	log.Printf("DeleteRoom: room %s deleted by %s", room.ID, userID)
	return nil
}

type SendMessageInput struct {
	Content string `json:"content" validate:"required"`
	Type    string `json:"type,omitempty"`
}

// SendMessage persists the message, updates the room preview with an
// atomic unread increment for the counterpart, then fans out to connected
// subscribers. Delivery failures never fail the send.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, roomID string, input SendMessageInput) (*entity.Message, error) {
	room, err := uc.GetRoom(ctx, senderID, roomID)
	if err != nil {
		return nil, err
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}
	if len([]rune(content)) > entity.MaxMessageContentLen {
		return nil, errors.BadRequest("Message content exceeds the maximum length", nil)
	}

	messageType := input.Type
	switch messageType {
	case "":
		messageType = entity.MessageTypeText
	case entity.MessageTypeText, entity.MessageTypeImage, entity.MessageTypeSystem:
	default:
		return nil, errors.BadRequest("Unknown message type", nil)
	}

	message := &entity.Message{
		ID:        uuid.New().String(),
		RoomID:    room.ID,
		SenderID:  senderID,
		Type:      messageType,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	if err := uc.chatRepo.SetLastMessage(ctx, room, message); err != nil {
		return nil, err
	}

	uc.broadcastMessage(room, message)
	uc.publisher.Publish(ctx, notification.RoutingKeyChatMessage, notification.Event{
		Type:        "chat.message",
		RecipientID: room.Counterpart(senderID),
		ProductID:   room.ProductID,
		RoomID:      room.ID,
		Payload:     map[string]interface{}{"message_id": message.ID},
	})

	return message, nil
}

func (uc *ChatUseCase) broadcastMessage(room *entity.ChatRoom, message *entity.Message) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":    ws.FrameTypeMessage,
		"room_id": room.ID,
		"message": message,
	})
	if err != nil {
		log.Printf("SendMessage: broadcast marshal failed for room %s: %v", room.ID, err)
		return
	}

	delivered := uc.wsManager.BroadcastToRoom(room.ID, payload, message.SenderID)
	log.Printf("SendMessage: message %s fanned out to %d subscribers of room %s", message.ID, delivered, room.ID)
}

// MarkRead clears the caller's unread state for the room. Idempotent.
func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, roomID string) error {
	room, err := uc.GetRoom(ctx, userID, roomID)
	if err != nil {
		return err
	}
	return uc.chatRepo.ResetUnread(ctx, room, userID)
}

// TotalUnread sums the caller's unread counters across all their rooms.
func (uc *ChatUseCase) TotalUnread(ctx context.Context, userID string) (int64, error) {
	rooms, err := uc.chatRepo.ListRoomsByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, room := range rooms {
		if userID == room.SellerID {
			total += room.SellerUnreadCount
		} else {
			total += room.BuyerUnreadCount
		}
	}
	return total, nil
}

// PostSystemMessage drops a SYSTEM message into the (product, buyer) room
// when one exists. Best-effort; callers ignore the error.
func (uc *ChatUseCase) PostSystemMessage(ctx context.Context, productID, buyerID, content string) error {
	room, err := uc.chatRepo.GetRoomByProductAndBuyer(ctx, productID, buyerID)
	if err != nil {
		return err
	}

	message := &entity.Message{
		ID:        uuid.New().String(),
		RoomID:    room.ID,
		SenderID:  room.SellerID,
		Type:      entity.MessageTypeSystem,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return err
	}
	if err := uc.chatRepo.SetLastMessage(ctx, room, message); err != nil {
		return err
	}

	uc.broadcastMessage(room, message)
	return nil
}

// AuthorizeRoom, PostMessage and MarkRead satisfy the websocket session's
// chat dependency, so ws frames and REST calls share one code path.
func (uc *ChatUseCase) AuthorizeRoom(ctx context.Context, userID, roomID string) error {
	_, err := uc.GetRoom(ctx, userID, roomID)
	return err
}

func (uc *ChatUseCase) PostMessage(ctx context.Context, userID, roomID, content, messageType string) error {
	_, err := uc.SendMessage(ctx, userID, roomID, SendMessageInput{Content: content, Type: messageType})
	return err
}
