package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"owner_id", "name", "location", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"owner_id": bson.M{"bsonType": "string", "minLength": 1},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"location":          bson.M{"bsonType": "string", "maxLength": 300},
			"upi_id":            bson.M{"bsonType": "string", "maxLength": 100},
			"bank_account_name": bson.M{"bsonType": "string", "maxLength": 200},
			"created_at":        bson.M{"bsonType": "date"},
		},
	},
}

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"property_id", "room_number", "room_category", "capacity", "price_per_night"},
		"additionalProperties": true,

		"properties": bson.M{
			"property_id":   objectIDString,
			"room_number":   bson.M{"bsonType": "string", "minLength": 1, "maxLength": 20},
			"room_category": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  50,
			},
			"price_per_night": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},
		},
	},
}

var RoomCategoryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"property_id", "name"},

		"properties": bson.M{
			"property_id": objectIDString,
			"name":        bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
		},
	},
}
