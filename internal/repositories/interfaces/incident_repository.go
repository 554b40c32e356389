package interfaces

import (
	"context"

	"safeher/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Incident, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Incident, error)

	// AppendResponder records one guardian response and keeps the
	// responding counter in sync.
	AppendResponder(ctx context.Context, id primitive.ObjectID, responder models.GuardianResponse) error
	Resolve(ctx context.Context, id primitive.ObjectID) error
}
