package internal

import (
	"io/fs"

	"github.com/Sofia-Luceat-Project/os-browser/internal/platform"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	platform platform.Platform
	assets   fs.FS
	version  string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPlatform overrides the OS strategy detected from runtime.GOOS.
func WithPlatform(p platform.Platform) Option {
	return func(a *application) {
		a.platform = p
	}
}

// WithAssets replaces the bundled UI.
func WithAssets(fsys fs.FS) Option {
	return func(a *application) {
		a.assets = fsys
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
