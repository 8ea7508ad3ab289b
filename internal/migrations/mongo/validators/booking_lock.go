package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "room_id", "owner", "expires_at"},

		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"room_id":    objectIDString,
			"owner":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
		},
	},
}

var BookingEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"event_id", "type", "booking_id", "status", "occurred_at"},

		"properties": bson.M{
			"event_id": bson.M{"bsonType": "string", "minLength": 1},
			"type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"booking.created",
					"booking.status_changed",
					"booking.payment_proof_attached",
				},
			},
			"booking_id":  bson.M{"bsonType": "string"},
			"status":      bson.M{"bsonType": "string"},
			"occurred_at": bson.M{"bsonType": "date"},
		},
	},
}
