package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// Test AuthenticationError status mapping
func TestAuthenticationErrorStatusCode(t *testing.T) {
	tests := map[RejectReason]int{
		RejectMissingCredential:   http.StatusUnauthorized,
		RejectInvalidCredential:   http.StatusForbidden,
		RejectForbiddenIP:         http.StatusForbidden,
		RejectSuspiciousIP:        http.StatusForbidden,
		RejectServerMisconfigured: http.StatusInternalServerError,
	}

	for reason, want := range tests {
		err := &AuthenticationError{Reason: reason}
		if got := err.StatusCode(); got != want {
			t.Errorf("Expected status %d for %s, got %d", want, reason, got)
		}
	}
}

// Test ValidationErrors helpers
func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.ErrOrNil() != nil {
		t.Error("Expected nil error for empty validation errors")
	}

	errs.Add("apps[0].href", "URL targets a private or internal address")
	errs.Add("", "request body is not valid JSON")

	if !errs.HasErrors() {
		t.Error("Expected HasErrors to be true")
	}
	messages := errs.GetMessages()
	if len(messages) != 2 || messages[0] != "apps[0].href: URL targets a private or internal address" {
		t.Errorf("Unexpected messages: %v", messages)
	}
	if messages[1] != "request body is not valid JSON" {
		t.Errorf("Expected field-less message to have no prefix, got %q", messages[1])
	}

	var target ValidationErrors
	if !errors.As(fmt.Errorf("wrapped: %w", errs.ErrOrNil()), &target) {
		t.Error("Expected wrapped validation errors to be recoverable with errors.As")
	}
}

// Test PersistenceError unwrapping
func TestPersistenceErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&PersistenceError{Op: "write", Err: cause})

	if !errors.Is(err, cause) {
		t.Error("Expected PersistenceError to unwrap to its cause")
	}
}

// Test catalog stats and category lookup
func TestCatalogStats(t *testing.T) {
	c := &Catalog{
		Categories: []string{"Dev", "Ops"},
		Apps:       []App{{Name: "Grafana", Category: "Ops"}},
	}

	if got := c.Stats(); got.Categories != 2 || got.Apps != 1 {
		t.Errorf("Unexpected stats: %+v", got)
	}
	if !c.HasCategory("Dev") || c.HasCategory("dev") {
		t.Error("Expected exact, case-sensitive category lookup")
	}

	var nilCatalog *Catalog
	if nilCatalog.Stats() != (CatalogStats{}) {
		t.Error("Expected zero stats for nil catalog")
	}
}
