package interfaces

import (
	"context"
	"time"

	"safeher/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GuardianRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, guardian *models.Guardian) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Guardian, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Matching input: every guardian that opted in to receive alerts.
	ListOptedIn(ctx context.Context) ([]*models.Guardian, error)

	// Availability
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GuardianStatus) error
	UpdateLocation(ctx context.Context, id primitive.ObjectID, location models.GeoPoint) error

	// Alert history (append-only; read as scoring input)
	CreateAlert(ctx context.Context, alert *models.GuardianAlert) error
	RecentAlertHistory(ctx context.Context, guardianID primitive.ObjectID, limit int) ([]*models.GuardianAlert, error)
	UpdateAlertResponse(ctx context.Context, incidentID, guardianID primitive.ObjectID, status models.AlertStatus, respondedAt time.Time, responseTime *float64) error
}
