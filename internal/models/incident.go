package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IncidentStatus string

const (
	IncidentStatusActive     IncidentStatus = "active"
	IncidentStatusResolved   IncidentStatus = "resolved"
	IncidentStatusFalseAlarm IncidentStatus = "false_alarm"
)

// AlertSent records one outbound contact attempt (SMS or email) made for an
// incident, as reported back by the dispatcher.
type AlertSent struct {
	Type          string    `json:"type" bson:"type"` // sms, email
	Recipient     string    `json:"recipient" bson:"recipient"`
	RecipientName string    `json:"recipient_name,omitempty" bson:"recipient_name,omitempty"`
	Status        string    `json:"status" bson:"status"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
}

// NotifiedGuardian records a guardian that was selected for notification.
type NotifiedGuardian struct {
	GuardianID primitive.ObjectID `json:"guardian_id" bson:"guardian_id"`
	Name       string             `json:"name" bson:"name"`
	Distance   int                `json:"distance" bson:"distance"` // meters
	Status     string             `json:"status" bson:"status"`
	Timestamp  time.Time          `json:"timestamp" bson:"timestamp"`
}

// GuardianResponse is one guardian's reaction to an incident notification.
type GuardianResponse struct {
	GuardianID   primitive.ObjectID `json:"guardian_id" bson:"guardian_id"`
	Action       AlertStatus        `json:"action" bson:"action"`
	Distance     int                `json:"distance,omitempty" bson:"distance,omitempty"`
	Timestamp    time.Time          `json:"timestamp" bson:"timestamp"`
	ResponseTime *float64           `json:"response_time,omitempty" bson:"response_time,omitempty"` // minutes
}

// EscalationAction is one step taken while escalating an incident to police.
type EscalationAction struct {
	Description string                 `json:"description" bson:"description"`
	Timestamp   time.Time              `json:"timestamp" bson:"timestamp"`
	Details     map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
}

// Incident is a single SOS activation. The evidence hash is stamped once at
// creation and never rewritten; recomputing it from the stored id, timestamp
// and coordinates must reproduce the stored value.
type Incident struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID              primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Status              IncidentStatus     `json:"status" bson:"status" default:"active"`
	Location            IncidentLocation   `json:"location" bson:"location" validate:"required"`
	DeviceInfo          string             `json:"device_info,omitempty" bson:"device_info,omitempty"`
	EvidenceHash        string             `json:"evidence_hash" bson:"evidence_hash"`
	AlertsSent          []AlertSent        `json:"alerts_sent,omitempty" bson:"alerts_sent,omitempty"`
	GuardiansNotified   []NotifiedGuardian `json:"guardians_notified,omitempty" bson:"guardians_notified,omitempty"`
	Responders          []GuardianResponse `json:"responders,omitempty" bson:"responders,omitempty"`
	RespondingCount     int                `json:"responding_count" bson:"responding_count"`
	LastResponseAt      *time.Time         `json:"last_response_at,omitempty" bson:"last_response_at,omitempty"`
	PoliceEscalated     bool               `json:"police_escalated" bson:"police_escalated"`
	EscalationActions   []EscalationAction `json:"escalation_actions,omitempty" bson:"escalation_actions,omitempty"`
	RecoveryCompleted   bool               `json:"recovery_completed" bson:"recovery_completed"`
	RecoveryCompletedAt *time.Time         `json:"recovery_completed_at,omitempty" bson:"recovery_completed_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at" bson:"updated_at"`
	ResolvedAt          *time.Time         `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
