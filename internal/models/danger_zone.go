package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportCategory string

const (
	CategoryHarassment         ReportCategory = "Harassment"
	CategoryPoorLighting       ReportCategory = "Poor Lighting"
	CategoryStalking           ReportCategory = "Stalking"
	CategorySuspiciousActivity ReportCategory = "Suspicious Activity"
	CategoryUnsafeTransport    ReportCategory = "Unsafe Transport Stop"
)

// ReportCategories lists every accepted category, in display order.
var ReportCategories = []ReportCategory{
	CategoryHarassment,
	CategoryPoorLighting,
	CategoryStalking,
	CategorySuspiciousActivity,
	CategoryUnsafeTransport,
}

func (c ReportCategory) Valid() bool {
	for _, known := range ReportCategories {
		if c == known {
			return true
		}
	}
	return false
}

type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "high"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelLow    RiskLevel = "low"
)

// DangerZoneReport is one community submission. Immutable once stored.
type DangerZoneReport struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Lat         float64            `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng         float64            `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
	Category    ReportCategory     `json:"category" bson:"category" validate:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Timestamp   time.Time          `json:"timestamp" bson:"timestamp"`
	UserID      string             `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Verified    bool               `json:"verified" bson:"verified"`
}

// DangerZoneCluster is a derived grouping of nearby reports. Clusters are
// recomputed on every query and never persisted.
type DangerZoneCluster struct {
	ID            string              `json:"id"`
	Lat           float64             `json:"lat"`
	Lng           float64             `json:"lng"`
	Reports       []*DangerZoneReport `json:"reports"`
	Categories    []ReportCategory    `json:"categories"`
	FirstReported time.Time           `json:"first_reported"`
	LastReported  time.Time           `json:"last_reported"`
	ReportCount   int                 `json:"report_count"`
	RiskScore     float64             `json:"risk_score"`
	RiskLevel     RiskLevel           `json:"risk_level"`
}

func (c *DangerZoneCluster) Centroid() GeoPoint {
	return GeoPoint{Lat: c.Lat, Lng: c.Lng}
}

// DangerZoneStats summarizes the report corpus and its current clusters.
type DangerZoneStats struct {
	TotalReports    int64 `json:"total_reports"`
	TotalZones      int   `json:"total_zones"`
	HighRiskZones   int   `json:"high_risk_zones"`
	MediumRiskZones int   `json:"medium_risk_zones"`
	LowRiskZones    int   `json:"low_risk_zones"`
}
