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

type guardianRepository struct {
	collection *mongo.Collection
	alerts     *mongo.Collection
}

func NewGuardianRepository(db *mongo.Database) interfaces.GuardianRepository {
	return &guardianRepository{
		collection: db.Collection(utils.CollectionGuardians),
		alerts:     db.Collection(utils.CollectionGuardianAlerts),
	}
}

func (r *guardianRepository) Create(ctx context.Context, guardian *models.Guardian) error {
	guardian.ID = primitive.NewObjectID()
	guardian.CreatedAt = time.Now()
	guardian.UpdatedAt = time.Now()
	if guardian.Status == "" {
		guardian.Status = models.GuardianStatusActive
	}

	_, err := r.collection.InsertOne(ctx, guardian)
	if err != nil {
		return fmt.Errorf("failed to create guardian: %w", err)
	}

	return nil
}

func (r *guardianRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Guardian, error) {
	var guardian models.Guardian
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&guardian)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("guardian not found")
		}
		return nil, fmt.Errorf("failed to get guardian: %w", err)
	}

	return &guardian, nil
}

func (r *guardianRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update guardian: %w", err)
	}

	return nil
}

func (r *guardianRepository) ListOptedIn(ctx context.Context) ([]*models.Guardian, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"opt_in": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list opted-in guardians: %w", err)
	}
	defer cursor.Close(ctx)

	var guardians []*models.Guardian
	if err := cursor.All(ctx, &guardians); err != nil {
		return nil, fmt.Errorf("failed to decode guardians: %w", err)
	}

	return guardians, nil
}

func (r *guardianRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GuardianStatus) error {
	return r.Update(ctx, id, map[string]interface{}{
		"status":             status,
		"last_status_update": time.Now(),
	})
}

func (r *guardianRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, location models.GeoPoint) error {
	return r.Update(ctx, id, map[string]interface{}{
		"location": location,
	})
}

func (r *guardianRepository) CreateAlert(ctx context.Context, alert *models.GuardianAlert) error {
	alert.ID = primitive.NewObjectID()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	if alert.Status == "" {
		alert.Status = models.AlertStatusNotified
	}

	_, err := r.alerts.InsertOne(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to create guardian alert: %w", err)
	}

	return nil
}

func (r *guardianRepository) RecentAlertHistory(ctx context.Context, guardianID primitive.ObjectID, limit int) ([]*models.GuardianAlert, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.alerts.Find(ctx, bson.M{"guardian_id": guardianID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alert history: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*models.GuardianAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alert history: %w", err)
	}

	return alerts, nil
}

func (r *guardianRepository) UpdateAlertResponse(ctx context.Context, incidentID, guardianID primitive.ObjectID, status models.AlertStatus, respondedAt time.Time, responseTime *float64) error {
	updates := bson.M{
		"status":       status,
		"responded_at": respondedAt,
	}
	if responseTime != nil {
		updates["response_time"] = *responseTime
	}

	_, err := r.alerts.UpdateOne(
		ctx,
		bson.M{"incident_id": incidentID, "guardian_id": guardianID},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update alert response: %w", err)
	}

	return nil
}
