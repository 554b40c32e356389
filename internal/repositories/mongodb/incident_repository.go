package mongodb

import (
	"context"
	"fmt"
	"time"

	"safeher/internal/models"
	"safeher/internal/repositories/interfaces"
	"safeher/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type incidentRepository struct {
	collection *mongo.Collection
}

func NewIncidentRepository(db *mongo.Database) interfaces.IncidentRepository {
	return &incidentRepository{
		collection: db.Collection(utils.CollectionIncidents),
	}
}

func (r *incidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	if incident.ID.IsZero() {
		incident.ID = primitive.NewObjectID()
	}
	// The evidence hash binds the creation timestamp, so a caller-set
	// value must survive.
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now()
	}
	incident.UpdatedAt = incident.CreatedAt
	if incident.Status == "" {
		incident.Status = models.IncidentStatusActive
	}

	_, err := r.collection.InsertOne(ctx, incident)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Incident, error) {
	var incident models.Incident
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&incident)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("incident not found")
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	return &incident, nil
}

func (r *incidentRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	return nil
}

func (r *incidentRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Incident, error) {
	filter := bson.M{
		"user_id": userID,
		"status":  models.IncidentStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find active incidents: %w", err)
	}
	defer cursor.Close(ctx)

	var incidents []*models.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}

	return incidents, nil
}

func (r *incidentRepository) AppendResponder(ctx context.Context, id primitive.ObjectID, responder models.GuardianResponse) error {
	update := bson.M{
		"$push": bson.M{"responders": responder},
		"$set": bson.M{
			"last_response_at": responder.Timestamp,
			"updated_at":       time.Now(),
		},
	}
	if responder.Action == models.AlertStatusAccepted {
		update["$inc"] = bson.M{"responding_count": 1}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to append responder: %w", err)
	}

	return nil
}

func (r *incidentRepository) Resolve(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	return r.Update(ctx, id, map[string]interface{}{
		"status":      models.IncidentStatusResolved,
		"resolved_at": now,
	})
}
