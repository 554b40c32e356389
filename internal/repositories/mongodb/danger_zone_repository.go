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

type dangerZoneRepository struct {
	collection *mongo.Collection
}

func NewDangerZoneRepository(db *mongo.Database) interfaces.DangerZoneRepository {
	return &dangerZoneRepository{
		collection: db.Collection(utils.CollectionDangerReports),
	}
}

func (r *dangerZoneRepository) Create(ctx context.Context, report *models.DangerZoneReport) error {
	report.ID = primitive.NewObjectID()
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to create danger zone report: %w", err)
	}

	return nil
}

func (r *dangerZoneRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DangerZoneReport, error) {
	var report models.DangerZoneReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("danger zone report not found")
		}
		return nil, fmt.Errorf("failed to get danger zone report: %w", err)
	}

	return &report, nil
}

func (r *dangerZoneRepository) ListAll(ctx context.Context) ([]*models.DangerZoneReport, error) {
	return r.findReports(ctx, bson.M{})
}

func (r *dangerZoneRepository) ListByCategory(ctx context.Context, category models.ReportCategory) ([]*models.DangerZoneReport, error) {
	return r.findReports(ctx, bson.M{"category": category})
}

func (r *dangerZoneRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count danger zone reports: %w", err)
	}
	return count, nil
}

func (r *dangerZoneRepository) findReports(ctx context.Context, filter bson.M) ([]*models.DangerZoneReport, error) {
	// Ascending timestamp keeps the clustering pass deterministic for a
	// given data set.
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find danger zone reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*models.DangerZoneReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode danger zone reports: %w", err)
	}

	return reports, nil
}
