package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/toolshelf/database"
	"github.com/blogem/toolshelf/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	// File-backed so every pooled connection sees the same schema
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	db, err := database.InitializeDatabase(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func sampleCatalog(apps int) *models.Catalog {
	c := &models.Catalog{Categories: []string{"Dev", "Ops"}}
	for i := 0; i < apps; i++ {
		c.Apps = append(c.Apps, models.App{
			Name:     fmt.Sprintf("App %d", i),
			Href:     fmt.Sprintf("https://app%d.example.com", i),
			Category: "Dev",
			Tags:     []string{"tag"},
		})
	}
	return c
}

func TestCatalogRepository_WriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "catalog.json")
	repo := NewCatalogRepository([]string{path})
	ctx := context.Background()

	_, err := repo.Read(ctx)
	assert.ErrorIs(t, err, models.ErrCatalogNotFound)

	want := sampleCatalog(3)
	require.NoError(t, repo.Write(ctx, want))

	got, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, path, repo.Path())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestCatalogRepository_FallsBackThroughCandidates(t *testing.T) {
	dir := t.TempDir()
	primary := filepath.Join(dir, "data", "catalog.json")
	fallback := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(fallback, []byte(`{"categories":["Legacy"],"apps":[]}`), 0o644))

	repo := NewCatalogRepository([]string{primary, fallback})

	got, err := repo.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Legacy"}, got.Categories)

	// writes always target the canonical path
	require.NoError(t, repo.Write(context.Background(), sampleCatalog(1)))
	_, err = os.Stat(primary)
	assert.NoError(t, err)
}

func TestCatalogRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories":`), 0o644))

	_, err := NewCatalogRepository([]string{path}).Read(context.Background())

	var perr *models.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "read", perr.Op)
}

func TestCatalogRepository_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	repo := NewCatalogRepository([]string{filepath.Join(blocker, "catalog.json")})
	err := repo.Write(context.Background(), sampleCatalog(1))

	var perr *models.PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "write", perr.Op)
}

func TestCatalogRepository_ReadersNeverSeePartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	repo := NewCatalogRepository([]string{path})
	ctx := context.Background()
	require.NoError(t, repo.Write(ctx, sampleCatalog(1)))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	readErrs := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := repo.Read(ctx); err != nil {
				select {
				case readErrs <- err:
				default:
				}
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		require.NoError(t, repo.Write(ctx, sampleCatalog(200+i)))
	}
	close(stop)
	wg.Wait()

	select {
	case err := <-readErrs:
		t.Fatalf("reader observed a torn catalog: %v", err)
	default:
	}

	got, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Apps, 249)
}

func TestCatalogRepository_ConcurrentWritersLastOneWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	repo := NewCatalogRepository([]string{path})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, repo.Write(ctx, sampleCatalog(n)))
		}(i)
	}
	wg.Wait()

	got, err := repo.Read(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(got.Apps), 1)
	assert.LessOrEqual(t, len(got.Apps), 10)
}

func TestAuditRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditRepository(db)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := &models.AuditLogEntry{
			ID:        fmt.Sprintf("entry-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Kind:      models.EventAuthFailure,
			Details:   map[string]string{"reason": "invalid-credential"},
			IPAddress: "203.0.113.5",
		}
		if err := repo.Create(entry); err != nil {
			t.Fatalf("Failed to create audit entry: %v", err)
		}
	}
	require.NoError(t, repo.Create(&models.AuditLogEntry{
		ID:        "no-details",
		Timestamp: base.Add(time.Hour),
		Kind:      models.EventCatalogUpdated,
	}))

	recent, err := repo.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "entry-3", recent[0].ID)
	assert.Equal(t, "entry-4", recent[1].ID)
	assert.Equal(t, "no-details", recent[2].ID)
	assert.Nil(t, recent[2].Details)
	assert.Equal(t, "invalid-credential", recent[1].Details["reason"])
	assert.Equal(t, models.EventAuthFailure, recent[1].Kind)
	assert.True(t, base.Add(4*time.Minute).Equal(recent[1].Timestamp))
}

func TestNewRepositories(t *testing.T) {
	repos := NewRepositories(nil, nil)
	assert.NotNil(t, repos.Catalog)
	assert.Nil(t, repos.Audit)
	assert.Equal(t, DefaultCatalogPaths[0], repos.Catalog.Path())

	repos = NewRepositories([]string{"x.json"}, setupTestDB(t))
	assert.NotNil(t, repos.Audit)
}
