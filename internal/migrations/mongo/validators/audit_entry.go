package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditEntryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"student_id": bson.M{
				"bsonType": "string",
			},

			"exam_id": bson.M{
				"bsonType": "string",
			},

			"slot_id": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"SUCCESS",
					"FAILED",
					"CANCELLED",
				},
			},

			"reason": bson.M{
				"bsonType": "string",
			},

			"request_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
