package models

import "time"

// EventKind classifies a security-relevant event
type EventKind string

const (
	EventAuthSuccess        EventKind = "auth-success"
	EventAuthFailure        EventKind = "auth-failure"
	EventRateLimitExceeded  EventKind = "rate-limit-exceeded"
	EventRapidRequests      EventKind = "rapid-requests"
	EventSuspiciousIP       EventKind = "suspicious-ip-flagged"
	EventValidationFailed   EventKind = "validation-failed"
	EventCatalogUpdated     EventKind = "catalog-updated"
	EventPersistenceFailed  EventKind = "persistence-failed"
	EventConfigurationError EventKind = "configuration-error"
	EventSessionIssued      EventKind = "session-issued"
	EventSessionRevoked     EventKind = "session-revoked"
	EventAdminRequest       EventKind = "admin-request"
)

// AuditLogEntry represents a single security-relevant event
type AuditLogEntry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Kind      EventKind         `json:"eventKind"`
	Details   map[string]string `json:"details,omitempty"`
	IPAddress string            `json:"clientIP,omitempty"`
}
