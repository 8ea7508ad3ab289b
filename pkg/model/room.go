package model

import "time"

type Room struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID    string    `json:"propertyId" bson:"property_id"`
	RoomNumber    string    `json:"roomNumber" bson:"room_number"`
	RoomCategory  string    `json:"roomCategory" bson:"room_category"`
	Capacity      int       `json:"capacity" bson:"capacity"`
	PricePerNight float64   `json:"pricePerNight" bson:"price_per_night"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

func (r *Room) Summary() *RoomSummary {
	return &RoomSummary{
		ID:            r.ID,
		RoomNumber:    r.RoomNumber,
		RoomCategory:  r.RoomCategory,
		Capacity:      r.Capacity,
		PricePerNight: r.PricePerNight,
	}
}

// RoomCategory is reference data; (PropertyID, Name) is unique.
type RoomCategory struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	PropertyID string    `json:"propertyId" bson:"property_id"`
	Name       string    `json:"name" bson:"name"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
}
