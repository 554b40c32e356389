package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"safeher/internal/models"
	"safeher/pkg/logger"
	"safeher/pkg/maps"
)

// EvidenceService produces the tamper-evident documentation trail for an
// incident: the integrity hash stamped at creation, the structured
// evidence record, and human-readable renderings of it.
type EvidenceService interface {
	GenerateEvidenceHash(incidentID, timestampISO string, location models.GeoPoint) string
	VerifyEvidenceHash(incident *models.Incident) bool
	BuildEvidenceRecord(ctx context.Context, incident *models.Incident) *EvidenceRecord
	GenerateIncidentTimeline(incident *models.Incident) []TimelineEvent
	GenerateIncidentSummaryText(record *EvidenceRecord, timeline []TimelineEvent) string
}

type EvidenceRecord struct {
	IncidentID   string             `json:"incident_id"`
	EvidenceHash string             `json:"evidence_hash"`
	GeneratedAt  string             `json:"generated_at"`
	Incident     EvidenceIncident   `json:"incident"`
	Alerts       EvidenceAlerts     `json:"alerts"`
	Guardians    EvidenceGuardians  `json:"guardians"`
	Escalation   EvidenceEscalation `json:"escalation"`
	Resolution   EvidenceResolution `json:"resolution"`
}

type EvidenceIncident struct {
	Timestamp  string           `json:"timestamp"`
	Status     string           `json:"status"`
	Location   EvidenceLocation `json:"location"`
	DeviceInfo string           `json:"device_info"`
}

type EvidenceLocation struct {
	Coordinates string `json:"coordinates"`
	Address     string `json:"address"`
	Accuracy    string `json:"accuracy"`
	MapsLink    string `json:"maps_link,omitempty"`
}

type EvidenceAlerts struct {
	TotalSent int                    `json:"total_sent"`
	Contacts  []EvidenceAlertContact `json:"contacts"`
}

type EvidenceAlertContact struct {
	Type      string `json:"type"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type EvidenceGuardians struct {
	Notified   int                 `json:"notified"`
	Responding int                 `json:"responding"`
	Responders []EvidenceResponder `json:"responders"`
}

type EvidenceResponder struct {
	GuardianID string `json:"guardian_id"`
	Action     string `json:"action"`
	Distance   string `json:"distance"`
	Timestamp  string `json:"timestamp"`
}

type EvidenceEscalation struct {
	PoliceEscalated   bool                      `json:"police_escalated"`
	EscalationActions []models.EscalationAction `json:"escalation_actions"`
}

type EvidenceResolution struct {
	ResolvedAt        string `json:"resolved_at,omitempty"`
	RecoveryCompleted bool   `json:"recovery_completed"`
}

type TimelineEvent struct {
	Type        string            `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Description string            `json:"description"`
	Details     map[string]string `json:"details,omitempty"`
}

type evidenceService struct {
	geocoder maps.GeocodingProvider
	logger   *logger.Logger
}

func NewEvidenceService(geocoder maps.GeocodingProvider, log *logger.Logger) EvidenceService {
	return &evidenceService{
		geocoder: geocoder,
		logger:   log,
	}
}

// GenerateEvidenceHash binds incident id, timestamp and coordinates into a
// SHA-256 fingerprint. Pure and deterministic: recomputing with the same
// inputs always reproduces the stored value, and changing any input
// changes it.
func (s *evidenceService) GenerateEvidenceHash(incidentID, timestampISO string, location models.GeoPoint) string {
	evidenceString := fmt.Sprintf("%s|%s|%s,%s",
		incidentID,
		timestampISO,
		formatCoordinate(location.Lat),
		formatCoordinate(location.Lng),
	)

	sum := sha256.Sum256([]byte(evidenceString))
	return hex.EncodeToString(sum[:])
}

// VerifyEvidenceHash recomputes the fingerprint from the incident's stored
// core facts and compares it with the stored hash.
func (s *evidenceService) VerifyEvidenceHash(incident *models.Incident) bool {
	recomputed := s.GenerateEvidenceHash(
		incident.ID.Hex(),
		isoTimestamp(incident.CreatedAt),
		incident.Location.Point(),
	)
	return recomputed == incident.EvidenceHash
}

func (s *evidenceService) BuildEvidenceRecord(ctx context.Context, incident *models.Incident) *EvidenceRecord {
	address := incident.Location.Address
	if address == "" && s.geocoder != nil {
		// Best effort only; a missing address never blocks the record.
		resp, err := s.geocoder.ReverseGeocode(ctx, incident.Location.Lat, incident.Location.Lng)
		if err != nil {
			s.logger.WithIncidentID(incident.ID).WithError(err).Warn("reverse geocoding failed for evidence record")
		} else {
			address = resp.FirstAddress()
		}
	}
	if address == "" {
		address = "Not available"
	}

	accuracy := "unknown"
	if incident.Location.Accuracy > 0 {
		accuracy = fmt.Sprintf("%.0fm", incident.Location.Accuracy)
	}

	contacts := make([]EvidenceAlertContact, 0, len(incident.AlertsSent))
	for _, alert := range incident.AlertsSent {
		recipient := alert.RecipientName
		if recipient == "" {
			recipient = "Unknown"
		}
		contacts = append(contacts, EvidenceAlertContact{
			Type:      alert.Type,
			Recipient: recipient,
			Status:    alert.Status,
			Timestamp: isoTimestamp(alert.Timestamp),
		})
	}

	responders := make([]EvidenceResponder, 0, len(incident.Responders))
	for _, r := range incident.Responders {
		distance := "Unknown"
		if r.Distance > 0 {
			distance = fmt.Sprintf("%dm", r.Distance)
		}
		responders = append(responders, EvidenceResponder{
			GuardianID: r.GuardianID.Hex(),
			Action:     string(r.Action),
			Distance:   distance,
			Timestamp:  isoTimestamp(r.Timestamp),
		})
	}

	resolution := EvidenceResolution{
		RecoveryCompleted: incident.RecoveryCompleted,
	}
	if incident.ResolvedAt != nil {
		resolution.ResolvedAt = isoTimestamp(*incident.ResolvedAt)
	}

	return &EvidenceRecord{
		IncidentID:   incident.ID.Hex(),
		EvidenceHash: incident.EvidenceHash,
		GeneratedAt:  isoTimestamp(time.Now()),
		Incident: EvidenceIncident{
			Timestamp: isoTimestamp(incident.CreatedAt),
			Status:    string(incident.Status),
			Location: EvidenceLocation{
				Coordinates: fmt.Sprintf("%s, %s", formatCoordinate(incident.Location.Lat), formatCoordinate(incident.Location.Lng)),
				Address:     address,
				Accuracy:    accuracy,
				MapsLink:    incident.Location.MapsLink,
			},
			DeviceInfo: deviceInfoOrDefault(incident.DeviceInfo),
		},
		Alerts: EvidenceAlerts{
			TotalSent: len(incident.AlertsSent),
			Contacts:  contacts,
		},
		Guardians: EvidenceGuardians{
			Notified:   len(incident.GuardiansNotified),
			Responding: incident.RespondingCount,
			Responders: responders,
		},
		Escalation: EvidenceEscalation{
			PoliceEscalated:   incident.PoliceEscalated,
			EscalationActions: incident.EscalationActions,
		},
		Resolution: resolution,
	}
}

// GenerateIncidentTimeline flattens every recorded incident event into a
// single chronological list.
func (s *evidenceService) GenerateIncidentTimeline(incident *models.Incident) []TimelineEvent {
	timeline := []TimelineEvent{
		{
			Type:        "sos_triggered",
			Timestamp:   incident.CreatedAt,
			Description: "Emergency SOS triggered",
			Details: map[string]string{
				"location": locationOrDefault(incident.Location.Address),
			},
		},
	}

	for _, alert := range incident.AlertsSent {
		timeline = append(timeline, TimelineEvent{
			Type:        "alert_sent",
			Timestamp:   alert.Timestamp,
			Description: fmt.Sprintf("%s alert sent to %s", alert.Type, alert.RecipientName),
			Details: map[string]string{
				"recipient": alert.Recipient,
				"status":    alert.Status,
			},
		})
	}

	for _, guardian := range incident.GuardiansNotified {
		timeline = append(timeline, TimelineEvent{
			Type:        "guardian_notified",
			Timestamp:   guardian.Timestamp,
			Description: fmt.Sprintf("Guardian notified: %s", guardian.Name),
			Details: map[string]string{
				"distance": fmt.Sprintf("%.1f km", float64(guardian.Distance)/1000),
				"status":   guardian.Status,
			},
		})
	}

	for _, responder := range incident.Responders {
		verb := "declined"
		if responder.Action == models.AlertStatusAccepted || responder.Action == models.AlertStatusResponding {
			verb = "accepted"
		}
		timeline = append(timeline, TimelineEvent{
			Type:        "guardian_response",
			Timestamp:   responder.Timestamp,
			Description: fmt.Sprintf("Guardian %s response", verb),
			Details: map[string]string{
				"guardian_id": responder.GuardianID.Hex(),
				"action":      string(responder.Action),
			},
		})
	}

	for _, action := range incident.EscalationActions {
		description := action.Description
		if description == "" {
			description = "Police escalation action"
		}
		timeline = append(timeline, TimelineEvent{
			Type:        "police_escalation",
			Timestamp:   action.Timestamp,
			Description: description,
		})
	}

	if incident.ResolvedAt != nil {
		timeline = append(timeline, TimelineEvent{
			Type:        "incident_resolved",
			Timestamp:   *incident.ResolvedAt,
			Description: "Incident marked as resolved",
		})
	}

	if incident.RecoveryCompleted {
		completedAt := time.Now()
		if incident.RecoveryCompletedAt != nil {
			completedAt = *incident.RecoveryCompletedAt
		}
		timeline = append(timeline, TimelineEvent{
			Type:        "recovery_completed",
			Timestamp:   completedAt,
			Description: "Recovery mode completed",
		})
	}

	sort.SliceStable(timeline, func(a, b int) bool {
		return timeline[a].Timestamp.Before(timeline[b].Timestamp)
	})

	return timeline
}

// GenerateIncidentSummaryText renders the evidence record and timeline as
// a downloadable plain-text report.
func (s *evidenceService) GenerateIncidentSummaryText(record *EvidenceRecord, timeline []TimelineEvent) string {
	var b strings.Builder
	divider := strings.Repeat("-", 51)
	border := strings.Repeat("=", 51)

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line(border)
	line("         SAFEHER INCIDENT EVIDENCE REPORT")
	line(border)
	line("")
	line("Incident ID: %s", record.IncidentID)
	line("Evidence Hash: %s", record.EvidenceHash)
	line("Generated: %s", record.GeneratedAt)
	line("")
	line(divider)
	line("INCIDENT DETAILS")
	line(divider)
	line("Time: %s", record.Incident.Timestamp)
	line("Status: %s", strings.ToUpper(record.Incident.Status))
	line("Location: %s", record.Incident.Location.Address)
	line("Coordinates: %s", record.Incident.Location.Coordinates)
	line("Location Accuracy: %s", record.Incident.Location.Accuracy)
	line("Device: %s", record.Incident.DeviceInfo)
	line("")
	line(divider)
	line("ALERTS SENT")
	line(divider)
	line("Total Alerts: %d", record.Alerts.TotalSent)
	for i, contact := range record.Alerts.Contacts {
		line("%d. %s (%s) - %s", i+1, contact.Recipient, contact.Type, contact.Status)
		line("   Time: %s", contact.Timestamp)
	}
	line("")
	line(divider)
	line("GUARDIAN RESPONSE")
	line(divider)
	line("Guardians Notified: %d", record.Guardians.Notified)
	line("Guardians Responding: %d", record.Guardians.Responding)
	if len(record.Guardians.Responders) > 0 {
		for i, r := range record.Guardians.Responders {
			line("%d. Guardian %s...", i+1, shortID(r.GuardianID))
			line("   Action: %s", strings.ToUpper(r.Action))
			line("   Distance: %s", r.Distance)
			line("   Time: %s", r.Timestamp)
		}
	} else {
		line("No guardian responses recorded")
	}
	line("")
	line(divider)
	line("INCIDENT TIMELINE")
	line(divider)
	for _, event := range timeline {
		line("[%s] %s", event.Timestamp.UTC().Format("15:04:05"), event.Description)
		for key, value := range event.Details {
			if value != "" {
				line("           %s: %s", key, value)
			}
		}
	}
	line("")
	line(divider)
	line("LEGAL DISCLAIMER")
	line(divider)
	line("This report is generated for documentation purposes.")
	line("It is intended to support legal proceedings but does")
	line("not constitute legal advice or official testimony.")
	line("")
	line("The evidence hash can be used to verify the integrity")
	line("of this report. Any modification to the core incident")
	line("data will result in a different hash value.")
	line(border)

	return b.String()
}

// formatCoordinate renders a coordinate with the shortest decimal form
// that round-trips, keeping hashes re-derivable against records written
// by clients that stringify numbers the same way.
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isoTimestamp renders a timestamp as UTC ISO-8601 with milliseconds.
func isoTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func deviceInfoOrDefault(deviceInfo string) string {
	if deviceInfo == "" {
		return "Unknown device"
	}
	return deviceInfo
}

func locationOrDefault(address string) string {
	if address == "" {
		return "Location captured"
	}
	return address
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
