package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Catalog CatalogRepository
	Audit   AuditRepository
}

// NewRepositories creates and initializes all repositories. db may be nil when
// no durable audit store is configured.
func NewRepositories(catalogPaths []string, db *sql.DB) *Repositories {
	repos := &Repositories{
		Catalog: NewCatalogRepository(catalogPaths),
	}
	if db != nil {
		repos.Audit = NewAuditRepository(db)
	}
	return repos
}
