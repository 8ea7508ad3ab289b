package events

import (
	"time"

	"staybook/pkg/model"

	"github.com/google/uuid"
)

// New builds an event describing the current state of b.
func New(eventType string, b *model.Booking) *model.BookingEvent {
	return &model.BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		BookingCode: b.BookingCode,
		PropertyID:  b.PropertyID,
		RoomID:      b.RoomID,
		Status:      b.BookingStatus,
		OccurredAt:  time.Now().UTC(),
	}
}

func StatusChanged(b *model.Booking, previous model.BookingStatus, actorID string) *model.BookingEvent {
	e := New(model.EventBookingStatusChanged, b)
	e.PreviousStatus = previous
	e.ActorID = actorID
	return e
}
