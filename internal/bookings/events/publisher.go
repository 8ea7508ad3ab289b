package events

import (
	"context"
	"time"

	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"
)

const (
	source        = "bookings"
	schemaVersion = "1"
)

// Publisher emits booking lifecycle events. Delivery is best effort: a failed
// publish is logged and never surfaces to the caller.
type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent)
}

// MessageWriter is the part of *kafka.Producer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	writer  MessageWriter
	log     *logger.Logger
	timeout time.Duration
}

func NewKafkaPublisher(writer MessageWriter, log *logger.Logger, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  writer,
		log:     log,
		timeout: timeout,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent) {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithEventID(event.EventID).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		WithValue(event).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", event.Type, "booking_id", event.BookingID, "error", err)
		return
	}

	// The request may already be finishing; the event outlives it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.Publish(pubCtx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_id", event.EventID,
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
		return
	}

	p.log.Debug("Booking event published", "event_id", event.EventID, "event_type", event.Type, "booking_id", event.BookingID)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *model.BookingEvent) {}
