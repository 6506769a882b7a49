package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/blogem/toolshelf/audit"
	"github.com/blogem/toolshelf/repositories"
	"github.com/blogem/toolshelf/security"
	"github.com/blogem/toolshelf/services"
)

// writeJSON writes v as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"error": message})
}

// Dependencies are the collaborators shared by the controllers
type Dependencies struct {
	Services    *services.Services
	Authorizer  *security.Authorizer
	Tokens      *security.TokenStore
	Audit       *audit.Logger
	AuditStore  repositories.AuditRepository
	CatalogPath string
	DevMode     bool
}

// Controllers holds all controller instances
type Controllers struct {
	Catalog *CatalogController
	Auth    *AuthController
	Audit   *AuditController
	Health  *HealthController
}

// NewControllers creates and initializes all controller instances
func NewControllers(deps Dependencies) *Controllers {
	return &Controllers{
		Catalog: NewCatalogController(deps.Services, deps.DevMode),
		Auth:    NewAuthController(deps.Authorizer, deps.Tokens, deps.Audit),
		Audit:   NewAuditController(deps.Audit, deps.AuditStore),
		Health:  NewHealthController(deps.CatalogPath, deps.Authorizer),
	}
}
