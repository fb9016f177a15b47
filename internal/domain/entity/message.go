package entity

import "time"

const (
	MessageTypeText   = "TEXT"
	MessageTypeImage  = "IMAGE"
	MessageTypeSystem = "SYSTEM"
)

// MaxMessageContentLen caps message content length in characters.
const MaxMessageContentLen = 1000

type Message struct {
	ID       string `json:"id" firestore:"id"`
	RoomID   string `json:"room_id" firestore:"roomId"`
	SenderID string `json:"sender_id" firestore:"senderId"`
	Type     string `json:"type" firestore:"type"`
	Content  string `json:"content" firestore:"content"`
	IsRead   bool   `json:"is_read" firestore:"isRead"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
