package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Sofia-Luceat-Project/os-browser/internal/listing"
	"github.com/Sofia-Luceat-Project/os-browser/internal/watch"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Gateway  GatewayConfig     `yaml:"gateway"`
	Settings SettingsConfig    `yaml:"settings"`
	Catalog  CatalogConfig     `yaml:"catalog"`
	Terminal TerminalConfig    `yaml:"terminal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Gateway.Validate(); err != nil {
		return err
	}
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	return c.Terminal.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// GatewayConfig controls filesystem access.
//
// InitialDir is where empty or "." paths resolve; empty means the OS root.
// No containment is applied: every path the process can reach is served.
type GatewayConfig struct {
	InitialDir         string        `yaml:"initial_dir"`
	ListingConcurrency int           `yaml:"listing_concurrency"`
	WatchDebounce      time.Duration `yaml:"watch_debounce"`
}

// Validate validates the gateway configuration.
func (c *GatewayConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ListingConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.WatchDebounce, validation.Required, validation.Min(time.Nanosecond)),
	)
}

// SettingsConfig holds the per-app settings directory.
type SettingsConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the settings configuration.
func (c *SettingsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// CatalogConfig optionally replaces the built-in application catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Match(yamlFile).Error("must be a .yaml or .yml file")),
	)
}

var yamlFile = regexp.MustCompile(`\.ya?ml$`)

// TerminalConfig is the switch for trusted shell execution. When enabled,
// commands run unsandboxed with no timeout and no output limit.
type TerminalConfig struct {
	Enabled    bool   `yaml:"enabled"`
	DefaultCwd string `yaml:"default_cwd"`
}

// Validate validates the terminal configuration. DefaultCwd is only checked
// when commands may run.
func (c *TerminalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultCwd, validation.When(c.Enabled, validation.By(existingDir))),
	)
}

func existingDir(value any) error {
	dir, _ := value.(string)
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("must be a directory")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3000,
			},
		},
		Gateway: GatewayConfig{
			ListingConcurrency: listing.DefaultConcurrency,
			WatchDebounce:      watch.DefaultDebounce,
		},
		Settings: SettingsConfig{
			Dir: "./registry",
		},
		Terminal: TerminalConfig{
			Enabled: true,
		},
	}
}
