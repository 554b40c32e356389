package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes the query paths depend on. Safe to run
// on every startup; Mongo treats existing identical indexes as a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexSpecs := map[string][]mongo.IndexModel{
		"guardians": {
			{Keys: bson.D{{Key: "opt_in", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"guardian_alerts": {
			{Keys: bson.D{{Key: "guardian_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "incident_id", Value: 1}}},
		},
		"incidents": {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"danger_zone_reports": {
			{Keys: bson.D{{Key: "timestamp", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}

	for collection, indexes := range indexSpecs {
		_, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}

	return nil
}
