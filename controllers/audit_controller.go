package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/blogem/toolshelf/audit"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/repositories"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = audit.DefaultCapacity
)

// AuditController exposes the audit trail to the admin. store is the durable
// copy and may be nil.
type AuditController struct {
	logger *audit.Logger
	store  repositories.AuditRepository
}

// NewAuditController creates a new audit controller
func NewAuditController(logger *audit.Logger, store repositories.AuditRepository) *AuditController {
	return &AuditController{logger: logger, store: store}
}

// Index handles GET /api/audit?limit=&kind=&source=memory|durable
func (c *AuditController) Index(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	kind := models.EventKind(r.URL.Query().Get("kind"))

	var entries []models.AuditLogEntry
	switch source := r.URL.Query().Get("source"); source {
	case "", "memory":
		if kind != "" {
			entries = c.logger.LogsByEventKind(kind, limit)
		} else {
			entries = c.logger.RecentLogs(limit)
		}
	case "durable":
		if c.store == nil {
			writeError(w, http.StatusNotFound, "durable audit store is not configured")
			return
		}
		var err error
		if entries, err = c.durableLogs(kind, limit); err != nil {
			slog.Error("failed to read durable audit log", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read audit log")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "source must be memory or durable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

// durableLogs reads newest-first rows from the store, filtered by kind
func (c *AuditController) durableLogs(kind models.EventKind, limit int) ([]models.AuditLogEntry, error) {
	fetch := limit
	if kind != "" {
		fetch = maxAuditLimit
	}
	rows, err := c.store.Recent(fetch)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return rows, nil
	}

	entries := make([]models.AuditLogEntry, 0, limit)
	for _, row := range rows {
		if row.Kind == kind {
			entries = append(entries, row)
			if len(entries) == limit {
				break
			}
		}
	}
	return entries, nil
}
