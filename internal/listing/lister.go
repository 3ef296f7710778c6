// Package listing enumerates directories into FileEntry records.
package listing

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
	"github.com/Sofia-Luceat-Project/os-browser/internal/models"
	"github.com/Sofia-Luceat-Project/os-browser/internal/pathres"
	"github.com/Sofia-Luceat-Project/os-browser/internal/platform"
)

// StatFailed is the marker carried by entries whose metadata lookup failed.
const StatFailed = "Stat failed"

// DefaultConcurrency bounds in-flight stat calls per listing.
const DefaultConcurrency = 64

// Lister enumerates directories and enriches each child with metadata.
type Lister struct {
	resolver    *pathres.Resolver
	concurrency int
	stat        func(string) (fs.FileInfo, error)
}

// New creates a Lister. concurrency <= 0 selects DefaultConcurrency.
func New(resolver *pathres.Resolver, concurrency int) *Lister {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Lister{resolver: resolver, concurrency: concurrency, stat: os.Stat}
}

// Extension returns the lower-cased extension of name, "" when it has none.
func Extension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// List enumerates dir. Failure to read dir itself is returned as an
// *apperr.ListingError; per-entry failures are folded into the entries.
func (l *Lister) List(ctx context.Context, dir string) (*models.Listing, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, &apperr.ListingError{Path: dir, Err: err}
	}

	entries := make([]models.FileEntry, len(dirents))
	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, d := range dirents {
		g.Go(func() error {
			entries[i] = l.describe(ctx, dir, d)
			return nil
		})
	}
	_ = g.Wait()

	return &models.Listing{CurrentPath: dir, Files: entries}, nil
}

// describe builds the entry for one child. It never fails.
func (l *Lister) describe(ctx context.Context, dir string, d fs.DirEntry) models.FileEntry {
	name := d.Name()
	full := filepath.Join(dir, name)

	info, err := l.stat(full)
	if err != nil {
		slog.Debug("entry stat failed", slog.String("path", full), slog.String("error", err.Error()))
		return models.FileEntry{Name: name, IsDirectory: d.IsDir(), Error: StatFailed}
	}

	entry := models.FileEntry{
		Name:        name,
		IsDirectory: d.IsDir(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Extension:   Extension(name),
	}

	if entry.Extension == platform.ShortcutExtension {
		if target, ok := l.resolver.TryResolveLink(ctx, full); ok {
			entry.IsLnk = true
			entry.LnkTarget = &target
			if ti, err := l.stat(target); err == nil && ti.IsDir() {
				entry.IsDirectory = true
			}
		}
	}
	return entry
}
