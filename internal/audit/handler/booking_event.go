package handler

import (
	"context"

	"staybook/internal/audit/repository"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type BookingEventHandler struct {
	repo repository.BookingEventRepository
	log  *logger.Logger
}

func NewBookingEventHandler(repo repository.BookingEventRepository, log *logger.Logger) *BookingEventHandler {
	return &BookingEventHandler{repo: repo, log: log}
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent
// failures and go to the DLQ; storage failures are retried.
func (h *BookingEventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("undecodable booking event", err)
	}
	if event.EventID == "" {
		event.EventID = msg.GetEventID()
	}
	if event.EventID == "" || event.BookingID == "" || event.Type == "" {
		return kafka.NewPermanentError("booking event lacks event id, booking id or type", kafka.ErrInvalidMessage)
	}

	inserted, err := h.repo.Record(ctx, &event)
	if err != nil {
		return kafka.NewTransientError("failed to record booking event", err)
	}

	if !inserted {
		h.log.Debug("Duplicate booking event ignored", "event_id", event.EventID)
		return nil
	}
	h.log.Info("Booking event recorded",
		"event_id", event.EventID,
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"status", event.Status,
		"actor_id", event.ActorID,
	)
	return nil
}
