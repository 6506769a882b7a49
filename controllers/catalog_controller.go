package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/blogem/toolshelf/clientctx"
	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/services"
)

// CatalogController handles catalog API requests
type CatalogController struct {
	services *services.Services
	devMode  bool
}

// NewCatalogController creates a new catalog controller
func NewCatalogController(services *services.Services, devMode bool) *CatalogController {
	return &CatalogController{
		services: services,
		devMode:  devMode,
	}
}

// Get handles GET /api/catalog
func (c *CatalogController) Get(w http.ResponseWriter, r *http.Request) {
	catalog, err := c.services.Catalog.GetCatalog(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrCatalogNotFound) {
			writeError(w, http.StatusNotFound, "catalog not found")
			return
		}
		slog.Error("failed to read catalog", "error", err)
		c.writeInternal(w, "failed to load catalog", err)
		return
	}

	writeJSON(w, http.StatusOK, catalog)
}

// Save handles POST /api/catalog
func (c *CatalogController) Save(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := c.services.Catalog.SaveCatalog(r.Context(), body, clientctx.GetClientIP(r.Context()))
	if err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":   "validation failed",
				"reason":  strings.Join(verrs.GetMessages(), "; "),
				"details": verrs,
			})
			return
		}
		c.writeInternal(w, "failed to save catalog", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// writeInternal hides internal error detail outside development mode
func (c *CatalogController) writeInternal(w http.ResponseWriter, message string, err error) {
	body := map[string]any{"error": message}
	if c.devMode {
		body["detail"] = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
