package entity

import (
	"sort"
	"time"
)

// ChatRoom is a 1:1 channel between a product's seller and one buyer.
// Identity is the (productId, buyerId) pair; RoomKey derives the storage
// key that enforces that uniqueness.
type ChatRoom struct {
	ID        string `json:"id" firestore:"id"`
	ProductID string `json:"product_id" firestore:"productId"`
	SellerID  string `json:"seller_id" firestore:"sellerId"`
	BuyerID   string `json:"buyer_id" firestore:"buyerId"`

	LastMessage   string     `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty" firestore:"lastMessageAt,omitempty"`

	SellerUnreadCount int64 `json:"seller_unread_count" firestore:"sellerUnreadCount"`
	BuyerUnreadCount  int64 `json:"buyer_unread_count" firestore:"buyerUnreadCount"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// SortRoomsByActivity orders rooms most recently active first. Rooms
// that never saw a message sort after the rest, by creation time.
func SortRoomsByActivity(rooms []*ChatRoom) {
	sort.Slice(rooms, func(i, j int) bool {
		a, b := rooms[i], rooms[j]
		switch {
		case a.LastMessageAt == nil && b.LastMessageAt == nil:
			return a.CreatedAt.After(b.CreatedAt)
		case a.LastMessageAt == nil:
			return false
		case b.LastMessageAt == nil:
			return true
		case a.LastMessageAt.Equal(*b.LastMessageAt):
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return a.LastMessageAt.After(*b.LastMessageAt)
		}
	})
}

// RoomKey is the deterministic document ID for a (product, buyer) pair.
func RoomKey(productID, buyerID string) string {
	return productID + "_" + buyerID
}

// HasParticipant reports whether userID is the room's seller or buyer.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return userID == r.SellerID || userID == r.BuyerID
}

// Counterpart returns the other party of the room relative to userID.
func (r *ChatRoom) Counterpart(userID string) string {
	if userID == r.SellerID {
		return r.BuyerID
	}
	return r.SellerID
}
