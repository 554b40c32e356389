package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GuardianStatus string

const (
	GuardianStatusActive      GuardianStatus = "active"
	GuardianStatusUnavailable GuardianStatus = "unavailable"
)

type AlertStatus string

const (
	AlertStatusNotified   AlertStatus = "notified"
	AlertStatusAccepted   AlertStatus = "accepted"
	AlertStatusResponding AlertStatus = "responding"
	AlertStatusDeclined   AlertStatus = "declined"
	AlertStatusIgnored    AlertStatus = "ignored"
)

// Guardian is a volunteer who opted in to receive SOS alerts for nearby
// incidents. Location is updated periodically by the guardian's client and
// may be absent for guardians that never shared one.
type Guardian struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name             string             `json:"name" bson:"name"`
	Phone            string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Email            string             `json:"email,omitempty" bson:"email,omitempty"`
	Location         *GeoPoint          `json:"location,omitempty" bson:"location,omitempty"`
	OptIn            bool               `json:"opt_in" bson:"opt_in"`
	Status           GuardianStatus     `json:"status" bson:"status" default:"active"`
	LastStatusUpdate time.Time          `json:"last_status_update,omitempty" bson:"last_status_update,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// GuardianAlert is one entry in a guardian's append-only alert history.
// Entries are written when a guardian is notified and updated once when the
// guardian responds; the matching service only ever reads them.
type GuardianAlert struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GuardianID   primitive.ObjectID `json:"guardian_id" bson:"guardian_id" validate:"required"`
	IncidentID   primitive.ObjectID `json:"incident_id" bson:"incident_id" validate:"required"`
	Status       AlertStatus        `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	RespondedAt  *time.Time         `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
	ResponseTime *float64           `json:"response_time,omitempty" bson:"response_time,omitempty"` // minutes
}

// ScoreBreakdown records how a guardian's suitability score was composed.
type ScoreBreakdown struct {
	Distance        int `json:"distance"`
	Priority        int `json:"priority"`
	ResponseHistory int `json:"response_history"`
	Availability    int `json:"availability"`
	Total           int `json:"total"`
}

// RankedGuardian is one evaluated candidate in the notification ranking.
type RankedGuardian struct {
	GuardianID primitive.ObjectID `json:"guardian_id"`
	Name       string             `json:"name"`
	Distance   int                `json:"distance"` // meters, rounded
	DistanceKM float64            `json:"distance_km"`
	Location   GeoPoint           `json:"location"`
	Phone      string             `json:"phone,omitempty"`
	Email      string             `json:"email,omitempty"`
	Status     GuardianStatus     `json:"status"`
	Scoring    ScoreBreakdown     `json:"scoring"`
	TotalScore int                `json:"total_score"`
}

// GuardianCandidate is the trimmed projection handed to the notification
// dispatcher.
type GuardianCandidate struct {
	ID         primitive.ObjectID `json:"id"`
	Name       string             `json:"name"`
	Distance   int                `json:"distance"`
	DistanceKM float64            `json:"distance_km"`
	Location   GeoPoint           `json:"location"`
	Phone      string             `json:"phone,omitempty"`
	Email      string             `json:"email,omitempty"`
	Score      int                `json:"score"`
}

// GuardianAvailability is the answer to an availability probe.
type GuardianAvailability struct {
	Available bool           `json:"available"`
	Status    GuardianStatus `json:"status"`
	OptIn     bool           `json:"opt_in"`
}
