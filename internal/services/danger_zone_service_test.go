package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"safeher/internal/models"
	"safeher/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newZoneService(repo *fakeDangerZoneRepo) *dangerZoneService {
	svc := NewDangerZoneService(repo, nil, time.Minute, testSafetyConfig(), testLogger())
	return svc.(*dangerZoneService)
}

func zoneReport(lat, lng float64, category models.ReportCategory, timestamp time.Time) *models.DangerZoneReport {
	return &models.DangerZoneReport{
		ID:        primitive.NewObjectID(),
		Lat:       lat,
		Lng:       lng,
		Category:  category,
		Timestamp: timestamp,
	}
}

func TestClusterReportsGroupsNearbyReports(t *testing.T) {
	now := time.Now()
	svc := newZoneService(&fakeDangerZoneRepo{})

	// Two reports ~220m and ~440m from the first, then a second group
	// ~2.2km away.
	reports := []*models.DangerZoneReport{
		zoneReport(18.5204, 73.8567, models.CategoryHarassment, now.Add(-48*time.Hour)),
		zoneReport(18.5224, 73.8567, models.CategoryPoorLighting, now.Add(-24*time.Hour)),
		zoneReport(18.5244, 73.8567, models.CategoryHarassment, now.Add(-12*time.Hour)),
		zoneReport(18.5404, 73.8567, models.CategoryStalking, now.Add(-6*time.Hour)),
	}

	clusters := svc.ClusterReports(reports)
	require.Len(t, clusters, 2)

	assert.Equal(t, "cluster_0", clusters[0].ID)
	assert.Equal(t, 3, clusters[0].ReportCount)
	assert.Equal(t, "cluster_3", clusters[1].ID)
	assert.Equal(t, 1, clusters[1].ReportCount)
}

func TestClusterReportsEveryReportInExactlyOneCluster(t *testing.T) {
	now := time.Now()
	svc := newZoneService(&fakeDangerZoneRepo{})

	var reports []*models.DangerZoneReport
	for i := 0; i < 20; i++ {
		reports = append(reports, zoneReport(
			18.5+float64(i)*0.002,
			73.85+float64(i%3)*0.001,
			models.ReportCategories[i%len(models.ReportCategories)],
			now.Add(-time.Duration(i)*time.Hour),
		))
	}

	clusters := svc.ClusterReports(reports)

	seen := make(map[primitive.ObjectID]int)
	total := 0
	for _, cluster := range clusters {
		assert.Equal(t, len(cluster.Reports), cluster.ReportCount)
		for _, member := range cluster.Reports {
			seen[member.ID]++
			total++
		}
	}

	assert.Equal(t, len(reports), total)
	for id, count := range seen {
		assert.Equalf(t, 1, count, "report %s assigned to %d clusters", id.Hex(), count)
	}
}

func TestClusterReportsMembersWithinSeedDistance(t *testing.T) {
	now := time.Now()
	svc := newZoneService(&fakeDangerZoneRepo{})

	var reports []*models.DangerZoneReport
	for i := 0; i < 30; i++ {
		reports = append(reports, zoneReport(
			18.52+float64(i%7)*0.0015,
			73.856+float64(i%5)*0.0015,
			models.CategorySuspiciousActivity,
			now.Add(-time.Duration(i)*time.Hour),
		))
	}

	clusters := svc.ClusterReports(reports)

	for _, cluster := range clusters {
		seed := cluster.Reports[0]
		seedPoint := models.GeoPoint{Lat: seed.Lat, Lng: seed.Lng}
		for _, member := range cluster.Reports {
			distance := utils.DistanceMeters(seedPoint, models.GeoPoint{Lat: member.Lat, Lng: member.Lng})
			assert.LessOrEqual(t, distance, svc.cfg.ClusteringDistanceM)
		}
	}
}

func TestClusterReportsCentroidCategoriesAndTimestamps(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	svc := newZoneService(&fakeDangerZoneRepo{})

	oldest := now.Add(-72 * time.Hour)
	newest := now.Add(-1 * time.Hour)
	reports := []*models.DangerZoneReport{
		zoneReport(18.5200, 73.8560, models.CategoryHarassment, oldest),
		zoneReport(18.5210, 73.8570, models.CategoryPoorLighting, newest),
		zoneReport(18.5220, 73.8580, models.CategoryHarassment, now.Add(-24*time.Hour)),
	}

	clusters := svc.ClusterReports(reports)
	require.Len(t, clusters, 1)

	cluster := clusters[0]
	assert.InDelta(t, 18.5210, cluster.Lat, 1e-9)
	assert.InDelta(t, 73.8570, cluster.Lng, 1e-9)
	assert.Equal(t, []models.ReportCategory{models.CategoryHarassment, models.CategoryPoorLighting}, cluster.Categories)
	assert.Equal(t, oldest, cluster.FirstReported)
	assert.Equal(t, newest, cluster.LastReported)
}

func TestRiskScoringRecencyWeights(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc := newZoneService(&fakeDangerZoneRepo{})
	svc.now = func() time.Time { return fixed }

	veryRecent := fixed.Add(-24 * time.Hour)
	recent := fixed.Add(-10 * 24 * time.Hour)
	old := fixed.Add(-60 * 24 * time.Hour)

	tests := []struct {
		name          string
		timestamps    []time.Time
		expectedScore float64
		expectedLevel models.RiskLevel
	}{
		{
			name:          "single recent report stays low",
			timestamps:    []time.Time{veryRecent},
			expectedScore: 1.5,
			expectedLevel: models.RiskLevelLow,
		},
		{
			name:          "two recent reports reach medium",
			timestamps:    []time.Time{recent, recent},
			expectedScore: 2.0,
			expectedLevel: models.RiskLevelMedium,
		},
		{
			name:          "four very recent reports reach high",
			timestamps:    []time.Time{veryRecent, veryRecent, veryRecent, veryRecent},
			expectedScore: 6.0,
			expectedLevel: models.RiskLevelHigh,
		},
		{
			name:          "old reports decay to low",
			timestamps:    []time.Time{old, old},
			expectedScore: 1.0,
			expectedLevel: models.RiskLevelLow,
		},
		{
			name:          "many old reports still only medium",
			timestamps:    []time.Time{old, old, old, old, old, old, old, old},
			expectedScore: 4.0,
			expectedLevel: models.RiskLevelMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reports []*models.DangerZoneReport
			for _, ts := range tt.timestamps {
				reports = append(reports, zoneReport(18.5204, 73.8567, models.CategoryHarassment, ts))
			}

			clusters := svc.ClusterReports(reports)
			require.Len(t, clusters, 1)
			assert.InDelta(t, tt.expectedScore, clusters[0].RiskScore, 1e-9)
			assert.Equal(t, tt.expectedLevel, clusters[0].RiskLevel)
		})
	}
}

func TestGetDangerZonesFiltersByRadius(t *testing.T) {
	now := time.Now()
	repo := &fakeDangerZoneRepo{
		reports: []*models.DangerZoneReport{
			zoneReport(18.5204, 73.8567, models.CategoryHarassment, now.Add(-24*time.Hour)),
			zoneReport(18.5214, 73.8577, models.CategoryStalking, now.Add(-12*time.Hour)),
			// ~55km north, outside any reasonable query radius
			zoneReport(19.0204, 73.8567, models.CategoryPoorLighting, now.Add(-6*time.Hour)),
		},
	}
	svc := newZoneService(repo)

	clusters, err := svc.GetDangerZones(context.Background(), 18.5204, 73.8567, 5)
	require.NoError(t, err)

	require.Len(t, clusters, 1)
	assert.Equal(t, 2, clusters[0].ReportCount)
}

func TestGetDangerZonesDefaultsRadius(t *testing.T) {
	repo := &fakeDangerZoneRepo{}
	svc := newZoneService(repo)

	clusters, err := svc.GetDangerZones(context.Background(), 18.5204, 73.8567, 0)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestGetDangerZonesInvalidCoordinates(t *testing.T) {
	svc := newZoneService(&fakeDangerZoneRepo{})

	_, err := svc.GetDangerZones(context.Background(), 200, 73.8567, 5)
	assert.Error(t, err)
}

func TestGetAllDangerZonesRepoError(t *testing.T) {
	svc := newZoneService(&fakeDangerZoneRepo{listErr: errFakeRepo})

	_, err := svc.GetAllDangerZones(context.Background())
	assert.Error(t, err)
}

func TestCreateReport(t *testing.T) {
	repo := &fakeDangerZoneRepo{}
	svc := newZoneService(repo)

	report := &models.DangerZoneReport{
		Lat:      18.5204,
		Lng:      73.8567,
		Category: models.CategoryHarassment,
	}
	err := svc.CreateReport(context.Background(), report)
	require.NoError(t, err)

	require.Len(t, repo.reports, 1)
	assert.False(t, report.Timestamp.IsZero())
	assert.Equal(t, "anonymous", report.UserID)
}

func TestCreateReportRejectsInvalidInput(t *testing.T) {
	svc := newZoneService(&fakeDangerZoneRepo{})

	err := svc.CreateReport(context.Background(), &models.DangerZoneReport{
		Lat:      95,
		Lng:      73.8567,
		Category: models.CategoryHarassment,
	})
	assert.Error(t, err)

	err = svc.CreateReport(context.Background(), &models.DangerZoneReport{
		Lat:      18.5204,
		Lng:      73.8567,
		Category: models.ReportCategory("Aliens"),
	})
	assert.Error(t, err)
}

func TestGetZoneStats(t *testing.T) {
	fixed := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeDangerZoneRepo{
		reports: []*models.DangerZoneReport{
			// Dense very-recent group: score 4*1.5=6, high
			zoneReport(18.5204, 73.8567, models.CategoryHarassment, fixed.Add(-24*time.Hour)),
			zoneReport(18.5206, 73.8567, models.CategoryHarassment, fixed.Add(-24*time.Hour)),
			zoneReport(18.5208, 73.8567, models.CategoryStalking, fixed.Add(-24*time.Hour)),
			zoneReport(18.5210, 73.8567, models.CategoryStalking, fixed.Add(-24*time.Hour)),
			// Lone old report elsewhere, low
			zoneReport(18.9000, 73.8567, models.CategoryPoorLighting, fixed.Add(-60*24*time.Hour)),
		},
	}
	svc := newZoneService(repo)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.GetZoneStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalReports)
	assert.Equal(t, 2, stats.TotalZones)
	assert.Equal(t, 1, stats.HighRiskZones)
	assert.Equal(t, 0, stats.MediumRiskZones)
	assert.Equal(t, 1, stats.LowRiskZones)
}

func TestGetReportsByCategory(t *testing.T) {
	now := time.Now()
	repo := &fakeDangerZoneRepo{
		reports: []*models.DangerZoneReport{
			zoneReport(18.52, 73.85, models.CategoryHarassment, now),
			zoneReport(18.53, 73.86, models.CategoryStalking, now),
			zoneReport(18.54, 73.87, models.CategoryHarassment, now),
		},
	}
	svc := newZoneService(repo)

	reports, err := svc.GetReportsByCategory(context.Background(), models.CategoryHarassment)
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	_, err = svc.GetReportsByCategory(context.Background(), "Aliens")
	assert.Error(t, err)
}

func TestClusterIDsFollowSeedIndex(t *testing.T) {
	now := time.Now()
	svc := newZoneService(&fakeDangerZoneRepo{})

	reports := []*models.DangerZoneReport{
		zoneReport(18.50, 73.85, models.CategoryHarassment, now),
		zoneReport(18.60, 73.85, models.CategoryHarassment, now),
		zoneReport(18.70, 73.85, models.CategoryHarassment, now),
	}

	clusters := svc.ClusterReports(reports)
	require.Len(t, clusters, 3)
	for i, cluster := range clusters {
		assert.Equal(t, fmt.Sprintf("cluster_%d", i), cluster.ID)
	}
}
