package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/blogem/toolshelf/models"
	"github.com/blogem/toolshelf/repositories"
	"github.com/blogem/toolshelf/security"
	"github.com/blogem/toolshelf/validation"
)

// CatalogService interface defines catalog read/replace business logic
type CatalogService interface {
	GetCatalog(ctx context.Context) (*models.Catalog, error)
	SaveCatalog(ctx context.Context, body []byte, clientIP string) (*models.SaveResponse, error)
}

// catalogService implements CatalogService interface
type catalogService struct {
	catalogRepo repositories.CatalogRepository
	audit       security.EventRecorder
	now         func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repositories.CatalogRepository, audit security.EventRecorder) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		audit:       audit,
		now:         time.Now,
	}
}

// GetCatalog returns the persisted catalog or models.ErrCatalogNotFound
func (s *catalogService) GetCatalog(ctx context.Context) (*models.Catalog, error) {
	return s.catalogRepo.Read(ctx)
}

// SaveCatalog validates body and atomically replaces the catalog. Validation
// failures never reach the repository.
func (s *catalogService) SaveCatalog(ctx context.Context, body []byte, clientIP string) (*models.SaveResponse, error) {
	catalog, err := validation.ParseCatalog(body)
	if err != nil {
		var verrs models.ValidationErrors
		if errors.As(err, &verrs) {
			s.audit.Log(models.EventValidationFailed, clientIP, map[string]string{
				"errors": strconv.Itoa(len(verrs)),
				"first":  verrs[0].Error(),
			})
		}
		return nil, err
	}

	if err := s.catalogRepo.Write(ctx, catalog); err != nil {
		slog.Error("failed to persist catalog", "path", s.catalogRepo.Path(), "error", err)
		s.audit.Log(models.EventPersistenceFailed, clientIP, nil)

		var perr *models.PersistenceError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &models.PersistenceError{Op: "write", Err: err}
	}

	stats := catalog.Stats()
	s.audit.Log(models.EventCatalogUpdated, clientIP, map[string]string{
		"categories": strconv.Itoa(stats.Categories),
		"apps":       strconv.Itoa(stats.Apps),
	})

	return &models.SaveResponse{
		Success:   true,
		Timestamp: s.now().UTC(),
		Stats:     stats,
	}, nil
}
