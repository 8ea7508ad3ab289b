//go:build integration

package integrationtests

import (
	"context"
	"os"
	"testing"
	"time"

	"staybook/internal/bookings/repository"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoURI     = "mongodb://localhost:27017"
	defaultDatabaseName = "staybook"
	defaultServerURL    = "http://localhost:8080"
)

type seeder struct {
	client *mongo.Client
	db     *mongo.Database
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newSeeder(t *testing.T) *seeder {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(getEnv("TEST_MONGO_URI", defaultMongoURI)))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	s := &seeder{client: client, db: client.Database(getEnv("TEST_DB_NAME", defaultDatabaseName))}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	})
	return s
}

func (s *seeder) property(t *testing.T, name string) string {
	t.Helper()
	id := primitive.NewObjectID()
	_, err := s.db.Collection(repository.PropertyCollectionName).InsertOne(context.Background(), bson.M{
		"_id":               id,
		"owner_id":          "owner-" + id.Hex(),
		"name":              name,
		"location":          "Munnar",
		"upi_id":            "stay@upi",
		"bank_account_name": name + " Pvt Ltd",
		"created_at":        time.Now().UTC(),
	})
	require.NoError(t, err)
	return id.Hex()
}

func (s *seeder) room(t *testing.T, propertyID, number string, price float64) string {
	t.Helper()
	id := primitive.NewObjectID()
	_, err := s.db.Collection(repository.RoomCollectionName).InsertOne(context.Background(), bson.M{
		"_id":             id,
		"property_id":     propertyID,
		"room_number":     number,
		"room_category":   "Deluxe",
		"capacity":        2,
		"price_per_night": price,
		"created_at":      time.Now().UTC(),
	})
	require.NoError(t, err)
	return id.Hex()
}
