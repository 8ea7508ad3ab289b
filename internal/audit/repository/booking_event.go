package repository

import (
	"context"
	"fmt"
	"time"

	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Booking_events"

type BookingEventRepository interface {
	// Record stores event once; a redelivered event id is a no-op.
	Record(ctx context.Context, event *model.BookingEvent) (bool, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.BookingEvent, error)
}

type mongoBookingEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingEventRepository(cfg *config.Config) BookingEventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingEventRepository) Record(ctx context.Context, event *model.BookingEvent) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"event_id": event.EventID},
		bson.M{"$setOnInsert": event},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// two consumers racing on the same event both upsert; the loser sees the unique index
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record booking event: %w", err)
	}
	return res.UpsertedCount > 0, nil
}

func (r *mongoBookingEventRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.BookingEvent, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx,
		bson.M{"booking_id": bookingID},
		options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*model.BookingEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode booking events: %w", err)
	}
	return events, nil
}
