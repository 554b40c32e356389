package interfaces

import (
	"context"

	"safeher/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DangerZoneRepository interface {
	Create(ctx context.Context, report *models.DangerZoneReport) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.DangerZoneReport, error)

	// ListAll returns every report ordered by timestamp ascending so that
	// repeated clustering passes over the same data are deterministic.
	ListAll(ctx context.Context) ([]*models.DangerZoneReport, error)
	ListByCategory(ctx context.Context, category models.ReportCategory) ([]*models.DangerZoneReport, error)
	Count(ctx context.Context) (int64, error)
}
