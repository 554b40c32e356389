package services

import (
	"context"
	"errors"
	"time"

	"safeher/internal/config"
	"safeher/internal/models"
	"safeher/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel("error"),
		Format: "text",
		Output: "stderr",
	})
	return log
}

func testSafetyConfig() *config.SafetyConfig {
	return &config.SafetyConfig{
		MaxDistanceKM:         20,
		PriorityDistanceKM:    5,
		MaxGuardiansToNotify:  10,
		HistoryWindow:         20,
		ClusteringDistanceM:   500,
		RiskHighThreshold:     5,
		RiskMediumThreshold:   2,
		MinReportsForHighRisk: 2,
		VeryRecentDays:        7,
		VeryRecentWeight:      1.5,
		RecentDays:            30,
		RecentWeight:          1.0,
		OldWeight:             0.5,
		DefaultZoneRadiusKM:   10,
	}
}

var errFakeRepo = errors.New("repository unavailable")

type fakeGuardianRepo struct {
	guardians  []*models.Guardian
	history    map[primitive.ObjectID][]*models.GuardianAlert
	historyErr map[primitive.ObjectID]error

	listErr error

	createdAlerts   []*models.GuardianAlert
	statusUpdates   map[primitive.ObjectID]models.GuardianStatus
	alertResponses  []models.AlertStatus
	locationUpdates map[primitive.ObjectID]models.GeoPoint
}

func newFakeGuardianRepo() *fakeGuardianRepo {
	return &fakeGuardianRepo{
		history:         make(map[primitive.ObjectID][]*models.GuardianAlert),
		historyErr:      make(map[primitive.ObjectID]error),
		statusUpdates:   make(map[primitive.ObjectID]models.GuardianStatus),
		locationUpdates: make(map[primitive.ObjectID]models.GeoPoint),
	}
}

func (f *fakeGuardianRepo) Create(ctx context.Context, guardian *models.Guardian) error {
	f.guardians = append(f.guardians, guardian)
	return nil
}

func (f *fakeGuardianRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Guardian, error) {
	for _, g := range f.guardians {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, errFakeRepo
}

func (f *fakeGuardianRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeGuardianRepo) ListOptedIn(ctx context.Context) ([]*models.Guardian, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.guardians, nil
}

func (f *fakeGuardianRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.GuardianStatus) error {
	f.statusUpdates[id] = status
	return nil
}

func (f *fakeGuardianRepo) UpdateLocation(ctx context.Context, id primitive.ObjectID, location models.GeoPoint) error {
	f.locationUpdates[id] = location
	return nil
}

func (f *fakeGuardianRepo) CreateAlert(ctx context.Context, alert *models.GuardianAlert) error {
	f.createdAlerts = append(f.createdAlerts, alert)
	return nil
}

func (f *fakeGuardianRepo) RecentAlertHistory(ctx context.Context, guardianID primitive.ObjectID, limit int) ([]*models.GuardianAlert, error) {
	if err := f.historyErr[guardianID]; err != nil {
		return nil, err
	}
	alerts := f.history[guardianID]
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func (f *fakeGuardianRepo) UpdateAlertResponse(ctx context.Context, incidentID, guardianID primitive.ObjectID, status models.AlertStatus, respondedAt time.Time, responseTime *float64) error {
	f.alertResponses = append(f.alertResponses, status)
	return nil
}

type fakeIncidentRepo struct {
	incidents map[primitive.ObjectID]*models.Incident

	responders []models.GuardianResponse
	resolved   []primitive.ObjectID
	createErr  error
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: make(map[primitive.ObjectID]*models.Incident)}
}

func (f *fakeIncidentRepo) Create(ctx context.Context, incident *models.Incident) error {
	if f.createErr != nil {
		return f.createErr
	}
	if incident.ID.IsZero() {
		incident.ID = primitive.NewObjectID()
	}
	f.incidents[incident.ID] = incident
	return nil
}

func (f *fakeIncidentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Incident, error) {
	incident, ok := f.incidents[id]
	if !ok {
		return nil, errFakeRepo
	}
	return incident, nil
}

func (f *fakeIncidentRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeIncidentRepo) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Incident, error) {
	var active []*models.Incident
	for _, incident := range f.incidents {
		if incident.UserID == userID && incident.Status == models.IncidentStatusActive {
			active = append(active, incident)
		}
	}
	return active, nil
}

func (f *fakeIncidentRepo) AppendResponder(ctx context.Context, id primitive.ObjectID, responder models.GuardianResponse) error {
	f.responders = append(f.responders, responder)
	if incident, ok := f.incidents[id]; ok {
		incident.Responders = append(incident.Responders, responder)
		if responder.Action == models.AlertStatusAccepted {
			incident.RespondingCount++
		}
	}
	return nil
}

func (f *fakeIncidentRepo) Resolve(ctx context.Context, id primitive.ObjectID) error {
	f.resolved = append(f.resolved, id)
	if incident, ok := f.incidents[id]; ok {
		now := time.Now()
		incident.Status = models.IncidentStatusResolved
		incident.ResolvedAt = &now
	}
	return nil
}

type fakeDangerZoneRepo struct {
	reports   []*models.DangerZoneReport
	listErr   error
	createErr error
}

func (f *fakeDangerZoneRepo) Create(ctx context.Context, report *models.DangerZoneReport) error {
	if f.createErr != nil {
		return f.createErr
	}
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeDangerZoneRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.DangerZoneReport, error) {
	for _, r := range f.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errFakeRepo
}

func (f *fakeDangerZoneRepo) ListAll(ctx context.Context) ([]*models.DangerZoneReport, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.reports, nil
}

func (f *fakeDangerZoneRepo) ListByCategory(ctx context.Context, category models.ReportCategory) ([]*models.DangerZoneReport, error) {
	var matched []*models.DangerZoneReport
	for _, r := range f.reports {
		if r.Category == category {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (f *fakeDangerZoneRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.reports)), nil
}
