package search

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
	"github.com/Sofia-Luceat-Project/os-browser/internal/catalog"
	"github.com/Sofia-Luceat-Project/os-browser/internal/listing"
	"github.com/Sofia-Luceat-Project/os-browser/internal/models"
)

// Engine runs queries. It never recurses into subdirectories.
type Engine struct {
	catalog *catalog.Catalog
}

// New creates an Engine over the given catalog.
func New(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Search evaluates raw against dir and the catalog. App hits come first.
func (e *Engine) Search(raw, dir string) ([]models.SearchResult, error) {
	q := Parse(raw)
	results := []models.SearchResult{}

	if q.scansApps() {
		for _, app := range e.catalog.MatchName(q.Term) {
			results = append(results, models.SearchResult{Type: models.ResultApp, Name: app.Name, AppDescriptor: &app})
		}
	}

	if !q.scansDir() {
		return results, nil
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, &apperr.ListingError{Path: dir, Err: err}
	}
	for _, d := range dirents {
		name := d.Name()
		isDir := d.IsDir()
		nameMatch := strings.Contains(strings.ToLower(name), q.Term)

		var keep bool
		switch q.Filter {
		case FilterFile:
			keep = !isDir && nameMatch
		case FilterFolder:
			keep = isDir && nameMatch
		case FilterExtension:
			keep = listing.Extension(name) == q.Extension
		default:
			keep = nameMatch
		}
		if !keep {
			continue
		}

		typ := models.ResultFile
		if isDir && q.Filter != FilterExtension {
			typ = models.ResultFolder
		}
		results = append(results, models.SearchResult{Type: typ, Name: name, Path: filepath.Join(dir, name)})
	}
	return results, nil
}
