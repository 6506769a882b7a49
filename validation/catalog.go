package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/blogem/toolshelf/models"
)

// MaxIconLabelLength bounds a non-URL icon such as an emoji or icon name
const MaxIconLabelLength = 100

var ErrIconPath = errors.New("icon path contains disallowed characters")

// catalogLimits relaxes the string bound for inline icons only
func catalogLimits() Limits {
	limits := DefaultLimits()
	limits.StringLimits = map[string]int{"icon": MaxIconDataURLLength}
	return limits
}

// ParseCatalog decodes a request body, applies the structural bounds and
// returns a validated, sanitised catalog.
func ParseCatalog(body []byte) (*models.Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, models.ValidationErrors{{Message: "request body is not valid JSON"}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, models.ValidationErrors{{Message: "request body must contain a single JSON document"}}
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, models.ValidationErrors{{Message: "request body must be a JSON object"}}
	}

	clean, err := SanitizeStructure(raw, catalogLimits())
	if err != nil {
		var se *StructureError
		if errors.As(err, &se) {
			return nil, models.ValidationErrors{{Field: se.Path, Message: se.Message}}
		}
		return nil, err
	}

	encoded, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode payload: %w", err)
	}
	var catalog models.Catalog
	if err := json.Unmarshal(encoded, &catalog); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, models.ValidationErrors{{Field: typeErr.Field, Message: "has the wrong type"}}
		}
		return nil, models.ValidationErrors{{Message: "catalog has an invalid shape"}}
	}

	return ValidateCatalog(&catalog)
}

// ValidateCatalog enforces catalog limits and returns a sanitised copy.
// Every app must have a name, an SSRF-safe href and a category that exists in
// the categories list.
func ValidateCatalog(c *models.Catalog) (*models.Catalog, error) {
	if c == nil {
		return nil, models.ValidationErrors{{Message: "catalog is required"}}
	}

	var errs models.ValidationErrors
	if len(c.Categories) > models.MaxCategories {
		errs.Add("categories", fmt.Sprintf("at most %d categories are allowed", models.MaxCategories))
	}
	if len(c.Apps) > models.MaxApps {
		errs.Add("apps", fmt.Sprintf("at most %d apps are allowed", models.MaxApps))
	}
	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}

	out := &models.Catalog{
		Categories: make([]string, 0, len(c.Categories)),
		Apps:       make([]models.App, 0, len(c.Apps)),
	}

	seen := make(map[string]bool, len(c.Categories))
	for i, raw := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)
		name := SanitizeCategory(raw)
		switch {
		case name == "":
			errs.Add(field, "category name is required")
		case seen[name]:
			errs.Add(field, fmt.Sprintf("duplicate category %q", name))
		default:
			seen[name] = true
			out.Categories = append(out.Categories, name)
		}
	}

	for i, app := range c.Apps {
		clean, appErrs := validateApp(app, i, out)
		errs = append(errs, appErrs...)
		out.Apps = append(out.Apps, clean)
	}

	if err := errs.ErrOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func validateApp(app models.App, i int, catalog *models.Catalog) (models.App, models.ValidationErrors) {
	var errs models.ValidationErrors
	field := func(name string) string { return fmt.Sprintf("apps[%d].%s", i, name) }

	clean := models.App{
		Name:        SanitizeAppName(app.Name),
		Category:    SanitizeCategory(app.Category),
		Description: SanitizeDescription(app.Description),
		Tags:        SanitizeTags(app.Tags),
	}

	if clean.Name == "" {
		errs.Add(field("name"), "name is required")
	}

	href, err := NormalizeURL(app.Href)
	if err != nil {
		errs.Add(field("href"), err.Error())
	}
	clean.Href = href

	if !catalog.HasCategory(clean.Category) {
		errs.Add(field("category"), fmt.Sprintf("unknown category %q", clean.Category))
	}

	icon, err := sanitizeIcon(app.Icon)
	if err != nil {
		errs.Add(field("icon"), err.Error())
	}
	clean.Icon = icon

	return clean, errs
}

func sanitizeIcon(icon string) (string, error) {
	icon = strings.TrimSpace(icon)
	switch {
	case icon == "":
		return "", nil
	case IsDataURL(icon):
		if err := ValidateIconDataURL(icon); err != nil {
			return "", err
		}
		return icon, nil
	case strings.HasPrefix(icon, "/") && !strings.HasPrefix(icon, "//"):
		if strings.Contains(icon, "..") || strings.ContainsAny(icon, "<>\"'&\\") {
			return "", ErrIconPath
		}
		return icon, nil
	case strings.Contains(icon, "://") || strings.HasPrefix(icon, "//"):
		return NormalizeURL(icon)
	default:
		return SanitizeText(icon, MaxIconLabelLength), nil
	}
}
