package utils

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in the API envelope
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// Collection names
const (
	CollectionGuardians      = "guardians"
	CollectionGuardianAlerts = "guardian_alerts"
	CollectionIncidents      = "incidents"
	CollectionDangerReports  = "danger_zone_reports"
)

// Notification channel types
const (
	AlertTypeSMS   = "sms"
	AlertTypeEmail = "email"
)
