package model

import "time"

const (
	EventBookingCreated              = "booking.created"
	EventBookingStatusChanged        = "booking.status_changed"
	EventBookingPaymentProofAttached = "booking.payment_proof_attached"
)

type BookingEvent struct {
	EventID        string        `json:"eventId" bson:"event_id"`
	Type           string        `json:"type" bson:"type"`
	BookingID      string        `json:"bookingId" bson:"booking_id"`
	BookingCode    string        `json:"bookingCode" bson:"booking_code"`
	PropertyID     string        `json:"propertyId" bson:"property_id"`
	RoomID         string        `json:"roomId" bson:"room_id"`
	Status         BookingStatus `json:"status" bson:"status"`
	PreviousStatus BookingStatus `json:"previousStatus,omitempty" bson:"previous_status,omitempty"`
	ActorID        string        `json:"actorId,omitempty" bson:"actor_id,omitempty"`
	OccurredAt     time.Time     `json:"occurredAt" bson:"occurred_at"`
	RecordedAt     time.Time     `json:"recordedAt,omitempty" bson:"recorded_at,omitempty"`
}
