package services

import (
	"context"
	"fmt"
	"time"

	"safeher/internal/config"
	"safeher/internal/models"
	"safeher/internal/repositories/interfaces"
	"safeher/internal/utils"
	"safeher/pkg/cache"
	"safeher/pkg/geoindex"
	"safeher/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DangerZoneService turns raw community reports into clustered,
// risk-scored zones. Clusters are derived on every query, never stored.
type DangerZoneService interface {
	CreateReport(ctx context.Context, report *models.DangerZoneReport) error
	GetReport(ctx context.Context, id primitive.ObjectID) (*models.DangerZoneReport, error)
	GetReportsByCategory(ctx context.Context, category models.ReportCategory) ([]*models.DangerZoneReport, error)
	GetDangerZones(ctx context.Context, lat, lng, radiusKM float64) ([]*models.DangerZoneCluster, error)
	GetAllDangerZones(ctx context.Context) ([]*models.DangerZoneCluster, error)
	GetZoneStats(ctx context.Context) (*models.DangerZoneStats, error)
	ClusterReports(reports []*models.DangerZoneReport) []*models.DangerZoneCluster
}

type dangerZoneService struct {
	reportRepo interfaces.DangerZoneRepository
	cache      *cache.RedisCache
	cacheTTL   time.Duration
	cfg        *config.SafetyConfig
	logger     *logger.Logger
	now        func() time.Time
}

func NewDangerZoneService(
	reportRepo interfaces.DangerZoneRepository,
	redisCache *cache.RedisCache,
	cacheTTL time.Duration,
	cfg *config.SafetyConfig,
	log *logger.Logger,
) DangerZoneService {
	return &dangerZoneService{
		reportRepo: reportRepo,
		cache:      redisCache,
		cacheTTL:   cacheTTL,
		cfg:        cfg,
		logger:     log,
		now:        time.Now,
	}
}

func (s *dangerZoneService) CreateReport(ctx context.Context, report *models.DangerZoneReport) error {
	if !utils.IsValidCoordinates(report.Lat, report.Lng) {
		return fmt.Errorf("invalid report coordinates: %v,%v", report.Lat, report.Lng)
	}
	if !report.Category.Valid() {
		return fmt.Errorf("unknown report category: %q", report.Category)
	}

	if report.Timestamp.IsZero() {
		report.Timestamp = s.now()
	}
	if report.UserID == "" {
		report.UserID = "anonymous"
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return err
	}

	s.invalidateZoneCache(ctx)

	s.logger.WithField("category", string(report.Category)).
		WithField("report_id", report.ID.Hex()).Info("danger zone report created")

	return nil
}

// GetDangerZones returns clustered zones within radiusKM of the center.
// Reports are prefiltered through the spatial index, then clustered in
// stored timestamp order.
func (s *dangerZoneService) GetDangerZones(ctx context.Context, lat, lng, radiusKM float64) ([]*models.DangerZoneCluster, error) {
	if !utils.IsValidCoordinates(lat, lng) {
		return nil, fmt.Errorf("invalid query coordinates: %v,%v", lat, lng)
	}
	if radiusKM <= 0 {
		radiusKM = s.cfg.DefaultZoneRadiusKM
	}

	cacheKey := fmt.Sprintf("danger_zones:near:%.4f:%.4f:%.1f", lat, lng, radiusKM)
	if clusters, ok := s.cachedClusters(ctx, cacheKey); ok {
		return clusters, nil
	}

	reports, err := s.reportRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch danger zone reports: %w", err)
	}

	nearby := s.filterByRadius(reports, lat, lng, radiusKM*1000)
	clusters := s.ClusterReports(nearby)

	s.storeClusters(ctx, cacheKey, clusters)

	return clusters, nil
}

func (s *dangerZoneService) GetReport(ctx context.Context, id primitive.ObjectID) (*models.DangerZoneReport, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *dangerZoneService) GetReportsByCategory(ctx context.Context, category models.ReportCategory) ([]*models.DangerZoneReport, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown report category: %q", category)
	}
	return s.reportRepo.ListByCategory(ctx, category)
}

// GetZoneStats summarizes the current report corpus and its clusters.
func (s *dangerZoneService) GetZoneStats(ctx context.Context) (*models.DangerZoneStats, error) {
	total, err := s.reportRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count danger zone reports: %w", err)
	}

	clusters, err := s.GetAllDangerZones(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DangerZoneStats{
		TotalReports: total,
		TotalZones:   len(clusters),
	}
	for _, cluster := range clusters {
		switch cluster.RiskLevel {
		case models.RiskLevelHigh:
			stats.HighRiskZones++
		case models.RiskLevelMedium:
			stats.MediumRiskZones++
		default:
			stats.LowRiskZones++
		}
	}

	return stats, nil
}

func (s *dangerZoneService) GetAllDangerZones(ctx context.Context) ([]*models.DangerZoneCluster, error) {
	const cacheKey = "danger_zones:all"
	if clusters, ok := s.cachedClusters(ctx, cacheKey); ok {
		return clusters, nil
	}

	reports, err := s.reportRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch danger zone reports: %w", err)
	}

	clusters := s.ClusterReports(reports)

	s.storeClusters(ctx, cacheKey, clusters)

	return clusters, nil
}

// filterByRadius keeps reports within radiusMeters of the center while
// preserving input order, which the clustering pass depends on.
func (s *dangerZoneService) filterByRadius(reports []*models.DangerZoneReport, lat, lng, radiusMeters float64) []*models.DangerZoneReport {
	if len(reports) == 0 {
		return reports
	}

	index := geoindex.New()
	for _, report := range reports {
		_ = index.Insert(&geoindex.Entry{
			ID:  report.ID.Hex(),
			Lat: report.Lat,
			Lng: report.Lng,
		})
	}

	matched := make(map[string]struct{})
	for _, entry := range index.SearchRadius(lat, lng, radiusMeters) {
		matched[entry.ID] = struct{}{}
	}

	nearby := make([]*models.DangerZoneReport, 0, len(matched))
	for _, report := range reports {
		if _, ok := matched[report.ID.Hex()]; ok {
			nearby = append(nearby, report)
		}
	}

	return nearby
}

// ClusterReports groups reports with a single greedy pass: the first
// unprocessed report seeds a cluster and every unprocessed report within
// the clustering distance of that seed joins it. Membership is measured
// from the seed, not a running centroid, so output depends on input order.
// Every report lands in exactly one cluster.
func (s *dangerZoneService) ClusterReports(reports []*models.DangerZoneReport) []*models.DangerZoneCluster {
	clusters := make([]*models.DangerZoneCluster, 0)
	processed := make(map[int]struct{}, len(reports))

	for i, seed := range reports {
		if _, done := processed[i]; done {
			continue
		}
		processed[i] = struct{}{}

		cluster := &models.DangerZoneCluster{
			ID:            fmt.Sprintf("cluster_%d", i),
			Reports:       []*models.DangerZoneReport{seed},
			FirstReported: seed.Timestamp,
			LastReported:  seed.Timestamp,
		}
		categories := map[models.ReportCategory]struct{}{seed.Category: {}}
		categoryOrder := []models.ReportCategory{seed.Category}

		seedPoint := models.GeoPoint{Lat: seed.Lat, Lng: seed.Lng}
		for j, other := range reports {
			if _, done := processed[j]; done {
				continue
			}

			distance := utils.DistanceMeters(seedPoint, models.GeoPoint{Lat: other.Lat, Lng: other.Lng})
			if distance > s.cfg.ClusteringDistanceM {
				continue
			}

			cluster.Reports = append(cluster.Reports, other)
			if _, seen := categories[other.Category]; !seen {
				categories[other.Category] = struct{}{}
				categoryOrder = append(categoryOrder, other.Category)
			}
			if other.Timestamp.Before(cluster.FirstReported) {
				cluster.FirstReported = other.Timestamp
			}
			if other.Timestamp.After(cluster.LastReported) {
				cluster.LastReported = other.Timestamp
			}
			processed[j] = struct{}{}
		}

		points := make([]models.GeoPoint, len(cluster.Reports))
		for k, member := range cluster.Reports {
			points[k] = models.GeoPoint{Lat: member.Lat, Lng: member.Lng}
		}
		center := utils.CalculateCenter(points)

		cluster.Lat = center.Lat
		cluster.Lng = center.Lng
		cluster.Categories = categoryOrder
		cluster.ReportCount = len(cluster.Reports)
		cluster.RiskScore = s.calculateRiskScore(cluster.Reports)
		cluster.RiskLevel = s.riskLevel(cluster.RiskScore, cluster.ReportCount)

		clusters = append(clusters, cluster)
	}

	return clusters
}

// calculateRiskScore sums the recency weight of every member report.
func (s *dangerZoneService) calculateRiskScore(reports []*models.DangerZoneReport) float64 {
	total := 0.0
	for _, report := range reports {
		total += s.recencyWeight(report.Timestamp)
	}
	return total
}

func (s *dangerZoneService) recencyWeight(timestamp time.Time) float64 {
	daysSince := s.now().Sub(timestamp).Hours() / 24

	switch {
	case daysSince <= s.cfg.VeryRecentDays:
		return s.cfg.VeryRecentWeight
	case daysSince <= s.cfg.RecentDays:
		return s.cfg.RecentWeight
	default:
		return s.cfg.OldWeight
	}
}

// riskLevel maps a score to a discrete level. A single report can never
// mark a zone high-risk regardless of its recency.
func (s *dangerZoneService) riskLevel(score float64, reportCount int) models.RiskLevel {
	switch {
	case score >= s.cfg.RiskHighThreshold && reportCount >= s.cfg.MinReportsForHighRisk:
		return models.RiskLevelHigh
	case score >= s.cfg.RiskMediumThreshold:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

func (s *dangerZoneService) cachedClusters(ctx context.Context, key string) ([]*models.DangerZoneCluster, bool) {
	if s.cache == nil {
		return nil, false
	}

	var clusters []*models.DangerZoneCluster
	err := s.cache.Get(ctx, key, &clusters)
	if err != nil {
		if err != cache.ErrCacheMiss {
			s.logger.WithError(err).Warn("danger zone cache read failed")
		}
		return nil, false
	}

	return clusters, true
}

func (s *dangerZoneService) storeClusters(ctx context.Context, key string, clusters []*models.DangerZoneCluster) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, key, clusters, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("danger zone cache write failed")
	}
}

func (s *dangerZoneService) invalidateZoneCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if _, err := s.cache.DeletePattern(ctx, "danger_zones:*"); err != nil {
		s.logger.WithError(err).Warn("danger zone cache invalidation failed")
	}
}
