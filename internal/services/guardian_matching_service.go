package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"safeher/internal/config"
	"safeher/internal/models"
	"safeher/internal/repositories/interfaces"
	"safeher/internal/utils"
	"safeher/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GuardianMatchingService ranks opted-in guardians for incident response
// and tracks their replies so that future rankings improve.
type GuardianMatchingService interface {
	RankGuardians(ctx context.Context, location models.GeoPoint) ([]*models.RankedGuardian, error)
	TopGuardiansForNotification(ctx context.Context, location models.GeoPoint, count int) ([]*models.GuardianCandidate, error)
	TrackGuardianResponse(ctx context.Context, incidentID, guardianID primitive.ObjectID, action models.AlertStatus, responseTime *float64) error
	GetGuardianAvailability(ctx context.Context, guardianID primitive.ObjectID) (*models.GuardianAvailability, error)
	UpdateGuardianAvailability(ctx context.Context, guardianID primitive.ObjectID, available bool) error
}

type guardianMatchingService struct {
	guardianRepo interfaces.GuardianRepository
	incidentRepo interfaces.IncidentRepository
	cfg          *config.SafetyConfig
	logger       *logger.Logger
}

func NewGuardianMatchingService(
	guardianRepo interfaces.GuardianRepository,
	incidentRepo interfaces.IncidentRepository,
	cfg *config.SafetyConfig,
	log *logger.Logger,
) GuardianMatchingService {
	return &guardianMatchingService{
		guardianRepo: guardianRepo,
		incidentRepo: incidentRepo,
		cfg:          cfg,
		logger:       log,
	}
}

// RankGuardians evaluates every opted-in guardian against the incident
// location and returns the top candidates ordered by descending total
// score. Guardians without a location or beyond the distance gate are
// excluded outright. A failed history lookup degrades that one guardian to
// the neutral default instead of failing the ranking.
func (s *guardianMatchingService) RankGuardians(ctx context.Context, location models.GeoPoint) ([]*models.RankedGuardian, error) {
	if !utils.IsValidCoordinates(location.Lat, location.Lng) {
		return nil, fmt.Errorf("invalid incident coordinates: %v,%v", location.Lat, location.Lng)
	}

	guardians, err := s.guardianRepo.ListOptedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opted-in guardians: %w", err)
	}
	if len(guardians) == 0 {
		return []*models.RankedGuardian{}, nil
	}

	// History lookups are independent; evaluate candidates concurrently
	// and collect into an indexed slice. Excluded guardians stay nil.
	evaluated := make([]*models.RankedGuardian, len(guardians))
	var wg sync.WaitGroup
	for i, guardian := range guardians {
		wg.Add(1)
		go func(i int, guardian *models.Guardian) {
			defer wg.Done()
			evaluated[i] = s.evaluateGuardian(ctx, guardian, location)
		}(i, guardian)
	}
	wg.Wait()

	ranked := make([]*models.RankedGuardian, 0, len(evaluated))
	for _, candidate := range evaluated {
		if candidate != nil {
			ranked = append(ranked, candidate)
		}
	}

	// Descending by total score; ties go to the closer guardian, then to
	// the lower id, so output order is deterministic.
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].TotalScore != ranked[b].TotalScore {
			return ranked[a].TotalScore > ranked[b].TotalScore
		}
		if ranked[a].Distance != ranked[b].Distance {
			return ranked[a].Distance < ranked[b].Distance
		}
		return ranked[a].GuardianID.Hex() < ranked[b].GuardianID.Hex()
	})

	if len(ranked) > s.cfg.MaxGuardiansToNotify {
		ranked = ranked[:s.cfg.MaxGuardiansToNotify]
	}

	return ranked, nil
}

// evaluateGuardian scores a single guardian, or returns nil when the
// guardian cannot be considered.
func (s *guardianMatchingService) evaluateGuardian(ctx context.Context, guardian *models.Guardian, location models.GeoPoint) *models.RankedGuardian {
	if guardian.Location == nil {
		return nil
	}

	distance := utils.DistanceMeters(location, *guardian.Location)
	distanceKM := distance / 1000
	if distanceKM > s.cfg.MaxDistanceKM {
		return nil
	}

	maxDist := s.cfg.MaxDistanceKM * 1000
	distanceScore := int(math.Round(40 * (1 - distance/maxDist)))

	priorityBonus := 0
	if distanceKM <= s.cfg.PriorityDistanceKM {
		priorityBonus = 10
	}

	responseScore := s.calculateResponseScore(ctx, guardian.ID)

	availabilityScore := 5
	if guardian.Status == models.GuardianStatusActive {
		availabilityScore = 10
	}

	totalScore := float64(distanceScore) + float64(priorityBonus) + responseScore*0.4 + float64(availabilityScore)

	status := guardian.Status
	if status == "" {
		status = models.GuardianStatusActive
	}
	name := guardian.Name
	if name == "" {
		name = "Guardian"
	}

	return &models.RankedGuardian{
		GuardianID: guardian.ID,
		Name:       name,
		Distance:   int(math.Round(distance)),
		DistanceKM: math.Round(distanceKM*100) / 100,
		Location:   *guardian.Location,
		Phone:      guardian.Phone,
		Email:      guardian.Email,
		Status:     status,
		Scoring: models.ScoreBreakdown{
			Distance:        distanceScore,
			Priority:        priorityBonus,
			ResponseHistory: int(math.Round(responseScore * 0.4)),
			Availability:    availabilityScore,
			Total:           int(math.Round(totalScore)),
		},
		TotalScore: int(math.Round(totalScore)),
	}
}

// calculateResponseScore derives a 0-100 score from the guardian's most
// recent alert history. New guardians and failed lookups get the neutral
// default of 50.
func (s *guardianMatchingService) calculateResponseScore(ctx context.Context, guardianID primitive.ObjectID) float64 {
	const defaultScore = 50

	alerts, err := s.guardianRepo.RecentAlertHistory(ctx, guardianID, s.cfg.HistoryWindow)
	if err != nil {
		s.logger.WithGuardianID(guardianID).WithError(err).Warn("history lookup failed, using default response score")
		return defaultScore
	}
	if len(alerts) == 0 {
		return defaultScore
	}

	totalAlerts := 0
	respondedAlerts := 0
	totalResponseTime := 0.0
	responseTimeCount := 0

	for _, alert := range alerts {
		totalAlerts++

		if alert.Status == models.AlertStatusAccepted || alert.Status == models.AlertStatusResponding {
			respondedAlerts++

			if alert.RespondedAt != nil && !alert.CreatedAt.IsZero() {
				responseMinutes := alert.RespondedAt.Sub(alert.CreatedAt).Minutes()
				totalResponseTime += responseMinutes
				responseTimeCount++
			}
		}
	}

	// Response rate contributes up to 50 points.
	responseRate := float64(respondedAlerts) / float64(totalAlerts) * 50

	// Fast responders earn up to 25 points; 15+ minute averages earn none.
	speedBonus := 0.0
	if responseTimeCount > 0 {
		avgResponseTime := totalResponseTime / float64(responseTimeCount)
		speedBonus = math.Max(0, 25-(avgResponseTime/15*25))
	}

	// Stepwise reliability bonus: full 25 once three responses exist.
	reliabilityBonus := float64(respondedAlerts * 8)
	if respondedAlerts >= 3 {
		reliabilityBonus = 25
	}

	return math.Min(100, math.Round(responseRate+speedBonus+reliabilityBonus))
}

// TopGuardiansForNotification returns the trimmed candidate list consumed
// by the notification dispatcher.
func (s *guardianMatchingService) TopGuardiansForNotification(ctx context.Context, location models.GeoPoint, count int) ([]*models.GuardianCandidate, error) {
	ranked, err := s.RankGuardians(ctx, location)
	if err != nil {
		return nil, err
	}

	if count <= 0 || count > len(ranked) {
		count = len(ranked)
	}

	candidates := make([]*models.GuardianCandidate, 0, count)
	for _, g := range ranked[:count] {
		candidates = append(candidates, &models.GuardianCandidate{
			ID:         g.GuardianID,
			Name:       g.Name,
			Distance:   g.Distance,
			DistanceKM: g.DistanceKM,
			Location:   g.Location,
			Phone:      g.Phone,
			Email:      g.Email,
			Score:      g.TotalScore,
		})
	}

	return candidates, nil
}

// TrackGuardianResponse records a guardian's reaction to an incident both
// on the incident and in the guardian's alert history.
func (s *guardianMatchingService) TrackGuardianResponse(ctx context.Context, incidentID, guardianID primitive.ObjectID, action models.AlertStatus, responseTime *float64) error {
	now := time.Now()

	responder := models.GuardianResponse{
		GuardianID:   guardianID,
		Action:       action,
		Timestamp:    now,
		ResponseTime: responseTime,
	}
	if err := s.incidentRepo.AppendResponder(ctx, incidentID, responder); err != nil {
		return fmt.Errorf("failed to record responder on incident: %w", err)
	}

	if err := s.guardianRepo.UpdateAlertResponse(ctx, incidentID, guardianID, action, now, responseTime); err != nil {
		return fmt.Errorf("failed to update guardian alert: %w", err)
	}

	s.logger.WithIncidentID(incidentID).WithGuardianID(guardianID).
		WithField("action", string(action)).Info("guardian response tracked")

	return nil
}

func (s *guardianMatchingService) GetGuardianAvailability(ctx context.Context, guardianID primitive.ObjectID) (*models.GuardianAvailability, error) {
	guardian, err := s.guardianRepo.GetByID(ctx, guardianID)
	if err != nil {
		return nil, err
	}

	status := guardian.Status
	if status == "" {
		status = models.GuardianStatusActive
	}

	return &models.GuardianAvailability{
		Available: guardian.OptIn && status == models.GuardianStatusActive,
		Status:    status,
		OptIn:     guardian.OptIn,
	}, nil
}

func (s *guardianMatchingService) UpdateGuardianAvailability(ctx context.Context, guardianID primitive.ObjectID, available bool) error {
	status := models.GuardianStatusUnavailable
	if available {
		status = models.GuardianStatusActive
	}

	return s.guardianRepo.UpdateStatus(ctx, guardianID, status)
}
