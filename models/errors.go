package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCatalogNotFound is returned when no catalog file exists at any candidate location
var ErrCatalogNotFound = errors.New("catalog not found")

// ConfigurationError reports missing or invalid server configuration
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Message)
}

// RejectReason classifies why an admin request was refused
type RejectReason string

const (
	RejectForbiddenIP         RejectReason = "forbidden-ip"
	RejectSuspiciousIP        RejectReason = "suspicious-ip"
	RejectServerMisconfigured RejectReason = "server-misconfigured"
	RejectMissingCredential   RejectReason = "missing-credential"
	RejectInvalidCredential   RejectReason = "invalid-credential"
)

// AuthenticationError is a structured authorization rejection
type AuthenticationError struct {
	Reason RejectReason
}

func (e *AuthenticationError) Error() string {
	return "authorization rejected: " + string(e.Reason)
}

// StatusCode maps the rejection reason to an HTTP status
func (e *AuthenticationError) StatusCode() int {
	switch e.Reason {
	case RejectMissingCredential:
		return http.StatusUnauthorized
	case RejectServerMisconfigured:
		return http.StatusInternalServerError
	default:
		return http.StatusForbidden
	}
}

// RateLimitError reports a request refused by the rate limiter
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %ds", e.RetryAfter)
}

// PersistenceError wraps a storage failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As
func (e *PersistenceError) Unwrap() error { return e.Err }
