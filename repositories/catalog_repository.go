package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/blogem/toolshelf/models"
)

// DefaultCatalogPaths are tried in order when no override is configured
var DefaultCatalogPaths = []string{
	"data/catalog.json",
	"public/data/catalog.json",
	"catalog.json",
}

// CatalogRepository reads and atomically replaces the canonical catalog
type CatalogRepository interface {
	Read(ctx context.Context) (*models.Catalog, error)
	Write(ctx context.Context, catalog *models.Catalog) error
	Path() string
}

// fileCatalogRepository stores the catalog as a JSON file. Writes always go to
// the first candidate path; reads return the first candidate that parses.
type fileCatalogRepository struct {
	candidates []string
	mu         sync.Mutex
}

// NewCatalogRepository creates a file-backed catalog repository
func NewCatalogRepository(candidates []string) CatalogRepository {
	if len(candidates) == 0 {
		candidates = DefaultCatalogPaths
	}
	return &fileCatalogRepository{candidates: candidates}
}

// Path returns the canonical (write) location
func (r *fileCatalogRepository) Path() string {
	return r.candidates[0]
}

// Read returns the first catalog that can be read and parsed
func (r *fileCatalogRepository) Read(ctx context.Context) (*models.Catalog, error) {
	var lastErr error
	for _, path := range r.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				lastErr = err
			}
			continue
		}

		var catalog models.Catalog
		if err := json.Unmarshal(data, &catalog); err != nil {
			lastErr = fmt.Errorf("failed to parse %s: %w", path, err)
			continue
		}
		return &catalog, nil
	}

	if lastErr != nil {
		return nil, &models.PersistenceError{Op: "read", Err: lastErr}
	}
	return nil, models.ErrCatalogNotFound
}

// Write serialises catalog to a temp file beside the canonical path and
// renames it into place, so readers never observe a partial document.
func (r *fileCatalogRepository) Write(ctx context.Context, catalog *models.Catalog) error {
	if catalog == nil {
		return &models.PersistenceError{Op: "write", Err: errors.New("nil catalog")}
	}
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return &models.PersistenceError{Op: "encode", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeFileAtomic(r.Path(), data); err != nil {
		return &models.PersistenceError{Op: "write", Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}
