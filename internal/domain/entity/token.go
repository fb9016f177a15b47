package entity

import "time"

// ResetToken is a single-use, expiring credential stored durably so
// every server instance sees the same token state.
type ResetToken struct {
	Token     string    `json:"token" firestore:"token"`
	UserID    string    `json:"user_id" firestore:"userId"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// Expired reports whether the token is past its TTL at the given instant.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
