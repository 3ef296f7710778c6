// Package pathres turns client-supplied path strings into absolute paths.
//
// Resolution is deliberately unrestricted: any location reachable with the
// process's permissions may be addressed. Resolver is the one place a
// containment policy would be inserted.
package pathres

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
	"github.com/Sofia-Luceat-Project/os-browser/internal/platform"
)

// Resolver normalizes raw paths and resolves shortcut files.
type Resolver struct {
	initialDir string
	platform   platform.Platform
}

// New creates a Resolver. An empty initialDir means the platform root.
func New(p platform.Platform, initialDir string) (*Resolver, error) {
	if initialDir == "" {
		initialDir = p.Root()
	}
	abs, err := filepath.Abs(initialDir)
	if err != nil {
		return nil, fmt.Errorf("pathres: initial dir: %w", err)
	}
	return &Resolver{initialDir: abs, platform: p}, nil
}

// InitialDir returns the directory used for empty input.
func (r *Resolver) InitialDir() string {
	return r.initialDir
}

// Resolve maps raw to an absolute, cleaned path. Empty input and "." map to
// the initial directory. No existence check is made.
func (r *Resolver) Resolve(raw string) (string, error) {
	if raw == "" || raw == "." {
		return r.initialDir, nil
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", apperr.ErrInvalidPath, raw, err)
	}
	return abs, nil
}

// ResolveLink returns the target of a shortcut file, or path unchanged when
// the platform has no shortcuts or resolution fails.
func (r *Resolver) ResolveLink(ctx context.Context, path string) string {
	target, ok := r.TryResolveLink(ctx, path)
	if !ok {
		return path
	}
	return target
}

// TryResolveLink is ResolveLink that also reports whether resolution succeeded.
func (r *Resolver) TryResolveLink(ctx context.Context, path string) (string, bool) {
	if !r.platform.SupportsShortcuts() {
		return path, false
	}
	target, err := r.platform.ResolveShortcut(ctx, path)
	if err != nil {
		slog.Debug("shortcut resolution failed", slog.String("path", path), slog.String("error", err.Error()))
		return path, false
	}
	slog.Debug("shortcut resolved", slog.String("path", path), slog.String("target", target))
	return target, true
}

// Platform returns the platform strategy the resolver uses.
func (r *Resolver) Platform() platform.Platform {
	return r.platform
}
