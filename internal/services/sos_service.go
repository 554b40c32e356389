package services

import (
	"context"
	"fmt"
	"time"

	"safeher/internal/config"
	"safeher/internal/models"
	"safeher/internal/repositories/interfaces"
	"safeher/internal/utils"
	"safeher/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SOSService drives the incident lifecycle: creation with the evidence
// hash stamped in, guardian selection and notification, and evidence
// report generation.
type SOSService interface {
	TriggerSOS(ctx context.Context, userID primitive.ObjectID, location models.IncidentLocation, deviceInfo string) (*models.Incident, []*models.GuardianCandidate, error)
	GetIncident(ctx context.Context, id primitive.ObjectID) (*models.Incident, error)
	GetActiveIncidents(ctx context.Context, userID primitive.ObjectID) ([]*models.Incident, error)
	ResolveIncident(ctx context.Context, id primitive.ObjectID) error
	GetEvidenceReport(ctx context.Context, id primitive.ObjectID) (*EvidenceRecord, []TimelineEvent, string, error)
}

type sosService struct {
	incidentRepo interfaces.IncidentRepository
	matching     GuardianMatchingService
	notification NotificationService
	evidence     EvidenceService
	cfg          *config.SafetyConfig
	logger       *logger.Logger
}

func NewSOSService(
	incidentRepo interfaces.IncidentRepository,
	matching GuardianMatchingService,
	notification NotificationService,
	evidence EvidenceService,
	cfg *config.SafetyConfig,
	log *logger.Logger,
) SOSService {
	return &sosService{
		incidentRepo: incidentRepo,
		matching:     matching,
		notification: notification,
		evidence:     evidence,
		cfg:          cfg,
		logger:       log,
	}
}

func (s *sosService) TriggerSOS(ctx context.Context, userID primitive.ObjectID, location models.IncidentLocation, deviceInfo string) (*models.Incident, []*models.GuardianCandidate, error) {
	if !utils.IsValidCoordinates(location.Lat, location.Lng) {
		return nil, nil, fmt.Errorf("invalid incident coordinates: %v,%v", location.Lat, location.Lng)
	}

	now := time.Now()
	incident := &models.Incident{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Status:     models.IncidentStatusActive,
		Location:   location,
		DeviceInfo: deviceInfo,
		CreatedAt:  now,
	}
	incident.EvidenceHash = s.evidence.GenerateEvidenceHash(
		incident.ID.Hex(),
		isoTimestamp(now),
		location.Point(),
	)

	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		return nil, nil, err
	}

	log := s.logger.WithIncidentID(incident.ID)
	log.Info("SOS incident created")

	candidates, err := s.matching.TopGuardiansForNotification(ctx, location.Point(), s.cfg.MaxGuardiansToNotify)
	if err != nil {
		// The incident exists and its contacts can still be alerted by
		// other channels; guardian selection failing is not fatal.
		log.WithError(err).Error("guardian ranking failed")
		return incident, []*models.GuardianCandidate{}, nil
	}

	if _, err := s.notification.NotifyGuardians(ctx, incident, candidates); err != nil {
		log.WithError(err).Error("guardian notification failed")
	}

	return incident, candidates, nil
}

func (s *sosService) GetIncident(ctx context.Context, id primitive.ObjectID) (*models.Incident, error) {
	return s.incidentRepo.GetByID(ctx, id)
}

func (s *sosService) GetActiveIncidents(ctx context.Context, userID primitive.ObjectID) ([]*models.Incident, error) {
	return s.incidentRepo.GetActiveByUser(ctx, userID)
}

func (s *sosService) ResolveIncident(ctx context.Context, id primitive.ObjectID) error {
	return s.incidentRepo.Resolve(ctx, id)
}

func (s *sosService) GetEvidenceReport(ctx context.Context, id primitive.ObjectID) (*EvidenceRecord, []TimelineEvent, string, error) {
	incident, err := s.incidentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, "", err
	}

	record := s.evidence.BuildEvidenceRecord(ctx, incident)
	timeline := s.evidence.GenerateIncidentTimeline(incident)
	summary := s.evidence.GenerateIncidentSummaryText(record, timeline)

	return record, timeline, summary, nil
}
