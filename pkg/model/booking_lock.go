package model

import "time"

// BookingLock is an advisory lock document held while a booking for RoomID
// is being checked and inserted. Expired locks are reclaimed by the next writer.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"roomId"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
