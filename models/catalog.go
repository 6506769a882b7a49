package models

// Catalog limits enforced at write time
const (
	MaxCategories = 50
	MaxApps       = 500
)

// App represents a single tool link in the catalog
type App struct {
	Name        string   `json:"name"`
	Href        string   `json:"href"`
	Icon        string   `json:"icon,omitempty"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Catalog is the shared, admin-editable directory of tool links
type Catalog struct {
	Categories []string `json:"categories"`
	Apps       []App    `json:"apps"`
}

// CatalogStats summarises a persisted catalog
type CatalogStats struct {
	Categories int `json:"categories"`
	Apps       int `json:"apps"`
}

// Stats returns category and app counts
func (c *Catalog) Stats() CatalogStats {
	if c == nil {
		return CatalogStats{}
	}
	return CatalogStats{
		Categories: len(c.Categories),
		Apps:       len(c.Apps),
	}
}

// HasCategory reports whether name is one of the catalog's categories
func (c *Catalog) HasCategory(name string) bool {
	for _, category := range c.Categories {
		if category == name {
			return true
		}
	}
	return false
}
