package services

import (
	"context"
	"testing"

	"safeher/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSOSFixture() (SOSService, *fakeGuardianRepo, *fakeIncidentRepo) {
	guardianRepo := newFakeGuardianRepo()
	incidentRepo := newFakeIncidentRepo()
	cfg := testSafetyConfig()
	log := testLogger()

	matching := NewGuardianMatchingService(guardianRepo, incidentRepo, cfg, log)
	notification := NewNotificationService(guardianRepo, incidentRepo, &fakeSMSProvider{}, log)
	evidence := NewEvidenceService(nil, log)
	svc := NewSOSService(incidentRepo, matching, notification, evidence, cfg, log)

	return svc, guardianRepo, incidentRepo
}

func TestTriggerSOS(t *testing.T) {
	svc, guardianRepo, incidentRepo := newSOSFixture()
	guardianRepo.guardians = []*models.Guardian{
		activeGuardian("Asha", 18.5362, 73.8797),
		activeGuardian("Priya", 18.5300, 73.8600),
	}

	userID := primitive.NewObjectID()
	location := models.IncidentLocation{Lat: 18.5204, Lng: 73.8567, Address: "FC Road, Pune"}

	incident, candidates, err := svc.TriggerSOS(context.Background(), userID, location, "Pixel 8")
	require.NoError(t, err)
	require.NotNil(t, incident)

	assert.Equal(t, userID, incident.UserID)
	assert.Equal(t, models.IncidentStatusActive, incident.Status)
	assert.NotEmpty(t, incident.EvidenceHash)
	assert.Len(t, candidates, 2)

	// Incident was persisted with the hash already stamped
	stored, err := incidentRepo.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Equal(t, incident.EvidenceHash, stored.EvidenceHash)

	// Both guardians received alert history entries
	assert.Len(t, guardianRepo.createdAlerts, 2)
}

func TestTriggerSOSEvidenceHashIsVerifiable(t *testing.T) {
	svc, _, incidentRepo := newSOSFixture()

	incident, _, err := svc.TriggerSOS(context.Background(), primitive.NewObjectID(),
		models.IncidentLocation{Lat: 18.5204, Lng: 73.8567}, "")
	require.NoError(t, err)

	stored, err := incidentRepo.GetByID(context.Background(), incident.ID)
	require.NoError(t, err)

	evidence := NewEvidenceService(nil, testLogger())
	assert.True(t, evidence.VerifyEvidenceHash(stored))
}

func TestTriggerSOSInvalidCoordinates(t *testing.T) {
	svc, _, _ := newSOSFixture()

	_, _, err := svc.TriggerSOS(context.Background(), primitive.NewObjectID(),
		models.IncidentLocation{Lat: 95, Lng: 73.8567}, "")
	assert.Error(t, err)
}

func TestTriggerSOSRankingFailureIsNonFatal(t *testing.T) {
	svc, guardianRepo, _ := newSOSFixture()
	guardianRepo.listErr = errFakeRepo

	incident, candidates, err := svc.TriggerSOS(context.Background(), primitive.NewObjectID(),
		models.IncidentLocation{Lat: 18.5204, Lng: 73.8567}, "")
	require.NoError(t, err)

	assert.NotNil(t, incident)
	assert.Empty(t, candidates)
}

func TestTriggerSOSCreateFailure(t *testing.T) {
	svc, _, incidentRepo := newSOSFixture()
	incidentRepo.createErr = errFakeRepo

	_, _, err := svc.TriggerSOS(context.Background(), primitive.NewObjectID(),
		models.IncidentLocation{Lat: 18.5204, Lng: 73.8567}, "")
	assert.Error(t, err)
}

func TestGetActiveIncidents(t *testing.T) {
	svc, _, incidentRepo := newSOSFixture()
	userID := primitive.NewObjectID()

	active := &models.Incident{ID: primitive.NewObjectID(), UserID: userID, Status: models.IncidentStatusActive}
	resolved := &models.Incident{ID: primitive.NewObjectID(), UserID: userID, Status: models.IncidentStatusResolved}
	other := &models.Incident{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Status: models.IncidentStatusActive}
	incidentRepo.incidents[active.ID] = active
	incidentRepo.incidents[resolved.ID] = resolved
	incidentRepo.incidents[other.ID] = other

	incidents, err := svc.GetActiveIncidents(context.Background(), userID)
	require.NoError(t, err)

	require.Len(t, incidents, 1)
	assert.Equal(t, active.ID, incidents[0].ID)
}

func TestResolveIncident(t *testing.T) {
	svc, _, incidentRepo := newSOSFixture()
	incident := &models.Incident{ID: primitive.NewObjectID(), Status: models.IncidentStatusActive}
	incidentRepo.incidents[incident.ID] = incident

	err := svc.ResolveIncident(context.Background(), incident.ID)
	require.NoError(t, err)

	assert.Equal(t, models.IncidentStatusResolved, incident.Status)
	assert.NotNil(t, incident.ResolvedAt)
}

func TestGetEvidenceReport(t *testing.T) {
	svc, _, incidentRepo := newSOSFixture()
	incident := evidenceIncidentFixture()
	incidentRepo.incidents[incident.ID] = incident

	record, timeline, summary, err := svc.GetEvidenceReport(context.Background(), incident.ID)
	require.NoError(t, err)

	assert.Equal(t, incident.ID.Hex(), record.IncidentID)
	assert.NotEmpty(t, timeline)
	assert.Contains(t, summary, "SAFEHER INCIDENT EVIDENCE REPORT")
}

func TestGetEvidenceReportUnknownIncident(t *testing.T) {
	svc, _, _ := newSOSFixture()

	_, _, _, err := svc.GetEvidenceReport(context.Background(), primitive.NewObjectID())
	assert.Error(t, err)
}
