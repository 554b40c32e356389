package services

import (
	"context"
	"fmt"
	"time"

	"safeher/internal/models"
	"safeher/internal/repositories/interfaces"
	"safeher/internal/utils"
	"safeher/pkg/logger"
	"safeher/pkg/sms"
)

// NotificationService fans an incident alert out to the selected guardian
// candidates and records the outcome on both the incident and each
// guardian's alert history. Delivery is best-effort per guardian; one
// failed send never blocks the rest.
type NotificationService interface {
	NotifyGuardians(ctx context.Context, incident *models.Incident, candidates []*models.GuardianCandidate) ([]models.NotifiedGuardian, error)
}

type notificationService struct {
	guardianRepo interfaces.GuardianRepository
	incidentRepo interfaces.IncidentRepository
	smsProvider  sms.SMSProvider
	logger       *logger.Logger
}

func NewNotificationService(
	guardianRepo interfaces.GuardianRepository,
	incidentRepo interfaces.IncidentRepository,
	smsProvider sms.SMSProvider,
	log *logger.Logger,
) NotificationService {
	return &notificationService{
		guardianRepo: guardianRepo,
		incidentRepo: incidentRepo,
		smsProvider:  smsProvider,
		logger:       log,
	}
}

func (s *notificationService) NotifyGuardians(ctx context.Context, incident *models.Incident, candidates []*models.GuardianCandidate) ([]models.NotifiedGuardian, error) {
	if len(candidates) == 0 {
		return []models.NotifiedGuardian{}, nil
	}

	now := time.Now()
	message := s.alertMessage(incident)

	notified := make([]models.NotifiedGuardian, 0, len(candidates))
	alertsSent := make([]models.AlertSent, 0, len(candidates))

	for _, candidate := range candidates {
		alert := &models.GuardianAlert{
			GuardianID: candidate.ID,
			IncidentID: incident.ID,
			Status:     models.AlertStatusNotified,
			CreatedAt:  now,
		}
		if err := s.guardianRepo.CreateAlert(ctx, alert); err != nil {
			s.logger.WithIncidentID(incident.ID).WithGuardianID(candidate.ID).
				WithError(err).Warn("failed to record guardian alert")
			continue
		}

		deliveryStatus := "skipped"
		if candidate.Phone != "" && s.smsProvider != nil {
			resp, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
				To:      candidate.Phone,
				Message: message,
				Type:    "alert",
			})
			if err != nil {
				deliveryStatus = "failed"
				s.logger.WithIncidentID(incident.ID).WithGuardianID(candidate.ID).
					WithError(err).Warn("guardian SMS delivery failed")
			} else {
				deliveryStatus = resp.Status
			}

			alertsSent = append(alertsSent, models.AlertSent{
				Type:          utils.AlertTypeSMS,
				Recipient:     candidate.Phone,
				RecipientName: candidate.Name,
				Status:        deliveryStatus,
				Timestamp:     time.Now(),
			})
		}

		notified = append(notified, models.NotifiedGuardian{
			GuardianID: candidate.ID,
			Name:       candidate.Name,
			Distance:   candidate.Distance,
			Status:     deliveryStatus,
			Timestamp:  now,
		})
	}

	updates := map[string]interface{}{
		"guardians_notified": notified,
	}
	if len(alertsSent) > 0 {
		updates["alerts_sent"] = alertsSent
	}
	if err := s.incidentRepo.Update(ctx, incident.ID, updates); err != nil {
		return notified, fmt.Errorf("failed to record notifications on incident: %w", err)
	}

	s.logger.WithIncidentID(incident.ID).
		WithField("notified", len(notified)).Info("guardian notifications dispatched")

	return notified, nil
}

func (s *notificationService) alertMessage(incident *models.Incident) string {
	link := incident.Location.MapsLink
	if link == "" {
		link = fmt.Sprintf("https://maps.google.com/?q=%f,%f", incident.Location.Lat, incident.Location.Lng)
	}

	return fmt.Sprintf("SOS ALERT: someone nearby needs help. Location: %s. Open the SafeHer app to respond.", link)
}
