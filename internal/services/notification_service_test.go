package services

import (
	"context"
	"errors"
	"testing"

	"safeher/internal/models"
	"safeher/pkg/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSMSProvider struct {
	sent    []*sms.SMSRequest
	failFor map[string]error
}

func (f *fakeSMSProvider) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	if err := f.failFor[request.To]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, request)
	return &sms.SMSResponse{MessageID: "msg-1", Status: "sent"}, nil
}

func (f *fakeSMSProvider) SendBulkSMS(ctx context.Context, requests []*sms.SMSRequest) ([]*sms.SMSResponse, error) {
	responses := make([]*sms.SMSResponse, 0, len(requests))
	for _, request := range requests {
		resp, err := f.SendSMS(ctx, request)
		if err != nil {
			resp = &sms.SMSResponse{Status: "failed", Error: err.Error()}
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (f *fakeSMSProvider) GetDeliveryStatus(ctx context.Context, messageID string) (*sms.DeliveryStatus, error) {
	return &sms.DeliveryStatus{MessageID: messageID, Status: "delivered"}, nil
}

func candidateFixture(name, phone string) *models.GuardianCandidate {
	return &models.GuardianCandidate{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Phone:    phone,
		Distance: 2770,
		Score:    80,
	}
}

func TestNotifyGuardians(t *testing.T) {
	guardianRepo := newFakeGuardianRepo()
	incidentRepo := newFakeIncidentRepo()
	provider := &fakeSMSProvider{}

	svc := NewNotificationService(guardianRepo, incidentRepo, provider, testLogger())

	incident := &models.Incident{
		ID:       primitive.NewObjectID(),
		Location: models.IncidentLocation{Lat: 18.5204, Lng: 73.8567},
	}
	candidates := []*models.GuardianCandidate{
		candidateFixture("Asha", "+911111111111"),
		candidateFixture("Priya", "+912222222222"),
	}

	notified, err := svc.NotifyGuardians(context.Background(), incident, candidates)
	require.NoError(t, err)

	assert.Len(t, notified, 2)
	assert.Len(t, guardianRepo.createdAlerts, 2)
	assert.Len(t, provider.sent, 2)
	assert.Contains(t, provider.sent[0].Message, "SOS ALERT")
	assert.Contains(t, provider.sent[0].Message, "maps.google.com")

	for _, alert := range guardianRepo.createdAlerts {
		assert.Equal(t, incident.ID, alert.IncidentID)
		assert.Equal(t, models.AlertStatusNotified, alert.Status)
	}
}

func TestNotifyGuardiansSMSFailureIsIsolated(t *testing.T) {
	guardianRepo := newFakeGuardianRepo()
	incidentRepo := newFakeIncidentRepo()
	provider := &fakeSMSProvider{
		failFor: map[string]error{"+911111111111": errors.New("carrier rejected")},
	}

	svc := NewNotificationService(guardianRepo, incidentRepo, provider, testLogger())

	incident := &models.Incident{
		ID:       primitive.NewObjectID(),
		Location: models.IncidentLocation{Lat: 18.5204, Lng: 73.8567},
	}
	candidates := []*models.GuardianCandidate{
		candidateFixture("Asha", "+911111111111"),
		candidateFixture("Priya", "+912222222222"),
	}

	notified, err := svc.NotifyGuardians(context.Background(), incident, candidates)
	require.NoError(t, err)

	// Both guardians are recorded as notified even though one SMS failed.
	assert.Len(t, notified, 2)
	assert.Equal(t, "failed", notified[0].Status)
	assert.Equal(t, "sent", notified[1].Status)
	assert.Len(t, provider.sent, 1)
}

func TestNotifyGuardiansNoCandidates(t *testing.T) {
	svc := NewNotificationService(newFakeGuardianRepo(), newFakeIncidentRepo(), &fakeSMSProvider{}, testLogger())

	notified, err := svc.NotifyGuardians(context.Background(), &models.Incident{ID: primitive.NewObjectID()}, nil)
	require.NoError(t, err)
	assert.Empty(t, notified)
}

func TestNotifyGuardiansWithoutPhoneSkipsSMS(t *testing.T) {
	guardianRepo := newFakeGuardianRepo()
	provider := &fakeSMSProvider{}

	svc := NewNotificationService(guardianRepo, newFakeIncidentRepo(), provider, testLogger())

	incident := &models.Incident{
		ID:       primitive.NewObjectID(),
		Location: models.IncidentLocation{Lat: 18.5204, Lng: 73.8567},
	}
	candidates := []*models.GuardianCandidate{candidateFixture("NoPhone", "")}

	notified, err := svc.NotifyGuardians(context.Background(), incident, candidates)
	require.NoError(t, err)

	require.Len(t, notified, 1)
	assert.Equal(t, "skipped", notified[0].Status)
	assert.Empty(t, provider.sent)
}
