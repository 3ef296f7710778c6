// Package catalog holds the static application registry. A Catalog is built
// once at startup and never mutated; accessors hand out copies.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sofia-Luceat-Project/os-browser/internal/models"
)

//go:embed apps.yaml
var defaultApps []byte

// Catalog is an immutable, ordered set of application descriptors.
type Catalog struct {
	apps []models.AppDescriptor
	byID map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultApps)
}

// Load reads a YAML catalog from path, or the built-in one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML list of descriptors.
func Parse(data []byte) (*Catalog, error) {
	var apps []models.AppDescriptor
	if err := yaml.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return New(apps)
}

// New builds a Catalog from apps, preserving their order.
func New(apps []models.AppDescriptor) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(apps))}
	for _, a := range apps {
		if err := validation.ValidateStruct(&a,
			validation.Field(&a.ID, validation.Required),
			validation.Field(&a.Name, validation.Required),
		); err != nil {
			return nil, fmt.Errorf("catalog: app %q: %w", a.ID, err)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate app id %q", a.ID)
		}
		c.byID[a.ID] = len(c.apps)
		c.apps = append(c.apps, clone(a))
	}
	return c, nil
}

// Len returns the number of apps.
func (c *Catalog) Len() int { return len(c.apps) }

// List returns the descriptors in catalog order.
func (c *Catalog) List() []models.AppDescriptor {
	out := make([]models.AppDescriptor, len(c.apps))
	for i, a := range c.apps {
		out[i] = clone(a)
	}
	return out
}

// Map returns the descriptors keyed by id.
func (c *Catalog) Map() map[string]models.AppDescriptor {
	out := make(map[string]models.AppDescriptor, len(c.apps))
	for _, a := range c.apps {
		out[a.ID] = clone(a)
	}
	return out
}

// Get looks up one descriptor.
func (c *Catalog) Get(id string) (models.AppDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.AppDescriptor{}, false
	}
	return clone(c.apps[i]), true
}

// MatchName returns apps whose display name contains term, ignoring case.
func (c *Catalog) MatchName(term string) []models.AppDescriptor {
	term = strings.ToLower(term)
	var out []models.AppDescriptor
	for _, a := range c.apps {
		if strings.Contains(strings.ToLower(a.Name), term) {
			out = append(out, clone(a))
		}
	}
	return out
}

// ForExtension returns the context-menu apps able to open files with ext.
func (c *Catalog) ForExtension(ext string) []models.AppDescriptor {
	ext = strings.ToLower(ext)
	out := []models.AppDescriptor{}
	for _, a := range c.apps {
		if !a.ShowInContext {
			continue
		}
		if slices.Contains(a.SupportedExtensions, ext) || slices.Contains(a.SupportedExtensions, models.WildcardExtension) {
			out = append(out, clone(a))
		}
	}
	return out
}

func clone(a models.AppDescriptor) models.AppDescriptor {
	a.SupportedExtensions = slices.Clone(a.SupportedExtensions)
	return a
}
