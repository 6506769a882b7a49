package services

import (
	"github.com/blogem/toolshelf/repositories"
	"github.com/blogem/toolshelf/security"
)

// Services holds all service instances
type Services struct {
	Catalog CatalogService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, audit security.EventRecorder) *Services {
	return &Services{
		Catalog: NewCatalogService(repos.Catalog, audit),
	}
}
