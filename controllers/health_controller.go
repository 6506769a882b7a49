package controllers

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/blogem/toolshelf/security"
)

// HealthController reports process status
type HealthController struct {
	catalogPath string
	authorizer  *security.Authorizer
	startedAt   time.Time
}

// NewHealthController creates a new health controller
func NewHealthController(catalogPath string, authorizer *security.Authorizer) *HealthController {
	return &HealthController{
		catalogPath: catalogPath,
		authorizer:  authorizer,
		startedAt:   time.Now(),
	}
}

// Index handles GET /health
func (c *HealthController) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"service":          "toolshelf",
		"catalog":          redactPath(c.catalogPath),
		"secretConfigured": c.authorizer.Configured(),
		"uptimeSeconds":    int(time.Since(c.startedAt).Seconds()),
	})
}

// redactPath hides directories, keeping only the file name
func redactPath(path string) string {
	if path == "" {
		return ""
	}
	return ".../" + filepath.Base(path)
}
