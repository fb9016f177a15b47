package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

// CreateRoom writes the room under its deterministic (productId, buyerId)
// key. Create fails on an existing document, which is what resolves two
// concurrent first-contact calls to a single room.
func (r *firestoreChatRepository) CreateRoom(ctx context.Context, room *entity.ChatRoom) error {
	room.ID = entity.RoomKey(room.ProductID, room.BuyerID)

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.client.Collection("chatRooms").Doc(room.ID).Create(ctx, room)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Chat room already exists for this product and buyer")
		}
		return errors.Internal("Failed to create chat room", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetRoomByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.client.Collection("chatRooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat room", nil)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}

	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}

	return &room, nil
}

func (r *firestoreChatRepository) GetRoomByProductAndBuyer(ctx context.Context, productID, buyerID string) (*entity.ChatRoom, error) {
	return r.GetRoomByID(ctx, entity.RoomKey(productID, buyerID))
}

func (r *firestoreChatRepository) ListRoomsByUserID(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	var rooms []*entity.ChatRoom

	for _, field := range []string{"sellerId", "buyerId"} {
		docs, err := r.client.Collection("chatRooms").Where(field, "==", userID).Documents(ctx).GetAll()
		if err != nil {
			log.Printf("Firestore error while fetching rooms for user %s: %v", userID, err)
			return nil, errors.Internal("Failed to fetch chat rooms", err)
		}

		for _, doc := range docs {
			var room entity.ChatRoom
			if err := doc.DataTo(&room); err != nil {
				log.Printf("Error parsing chat room data for user %s: %v", userID, err)
				continue
			}
			rooms = append(rooms, &room)
		}
	}

	entity.SortRoomsByActivity(rooms)

	return rooms, nil
}

// DeleteRoom removes the room's messages first, then the room document.
func (r *firestoreChatRepository) DeleteRoom(ctx context.Context, id string) error {
	roomRef := r.client.Collection("chatRooms").Doc(id)

	bw := r.client.BulkWriter(ctx)
	iter := roomRef.Collection("messages").Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Internal("Failed to iterate messages for deletion", err)
		}
		if _, err := bw.Delete(doc.Ref); err != nil {
			return errors.Internal("Failed to delete message", err)
		}
	}
	bw.End()

	if _, err := roomRef.Delete(ctx); err != nil {
		return errors.Internal("Failed to delete chat room", err)
	}

	return nil
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	_, err := r.client.Collection("chatRooms").Doc(message.RoomID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

// SetLastMessage bumps the room preview and the counterpart's unread
// counter with a field transform, so concurrent sends never lose counts.
func (r *firestoreChatRepository) SetLastMessage(ctx context.Context, room *entity.ChatRoom, message *entity.Message) error {
	counterField := "sellerUnreadCount"
	if room.Counterpart(message.SenderID) == room.BuyerID {
		counterField = "buyerUnreadCount"
	}

	_, err := r.client.Collection("chatRooms").Doc(room.ID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: message.Content},
		{Path: "lastMessageAt", Value: message.CreatedAt},
		{Path: "updatedAt", Value: time.Now()},
		{Path: counterField, Value: firestore.Increment(1)},
	})
	if err != nil {
		return errors.Internal("Failed to update chat room last message", err)
	}

	return nil
}

// ResetUnread marks every unread message not authored by readerID as read
// and zeroes readerID's counter. Safe to call repeatedly.
func (r *firestoreChatRepository) ResetUnread(ctx context.Context, room *entity.ChatRoom, readerID string) error {
	roomRef := r.client.Collection("chatRooms").Doc(room.ID)

	bw := r.client.BulkWriter(ctx)
	iter := roomRef.Collection("messages").Where("isRead", "==", false).Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Internal("Failed to iterate unread messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue
		}
		if message.SenderID == readerID {
			continue
		}

		if _, err := bw.Update(doc.Ref, []firestore.Update{{Path: "isRead", Value: true}}); err != nil {
			return errors.Internal("Failed to mark message as read", err)
		}
	}
	bw.End()

	counterField := "sellerUnreadCount"
	if readerID == room.BuyerID {
		counterField = "buyerUnreadCount"
	}

	_, err := roomRef.Update(ctx, []firestore.Update{
		{Path: counterField, Value: int64(0)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to reset unread counter", err)
	}

	return nil
}

func (r *firestoreChatRepository) ListMessagesByRoom(ctx context.Context, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	// Ascending creation order; Firestore breaks createdAt ties by document
	// ID, which is stable across replays.
	query := r.client.Collection("chatRooms").Doc(roomID).Collection("messages").OrderBy("createdAt", firestore.Asc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching messages for room %s: %v", roomID, err)
		return nil, 0, errors.Internal("Failed to fetch messages", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var messages []*entity.Message
	for i := start; i < end; i++ {
		var message entity.Message
		if err := allDocs[i].DataTo(&message); err != nil {
			log.Printf("Error parsing message data for room %s: %v", roomID, err)
			continue
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}
