// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sofia-Luceat-Project/os-browser/internal/api"
	"github.com/Sofia-Luceat-Project/os-browser/internal/assets"
	"github.com/Sofia-Luceat-Project/os-browser/internal/catalog"
	"github.com/Sofia-Luceat-Project/os-browser/internal/codec"
	"github.com/Sofia-Luceat-Project/os-browser/internal/events"
	"github.com/Sofia-Luceat-Project/os-browser/internal/listing"
	"github.com/Sofia-Luceat-Project/os-browser/internal/mcpserver"
	"github.com/Sofia-Luceat-Project/os-browser/internal/pathres"
	"github.com/Sofia-Luceat-Project/os-browser/internal/platform"
	"github.com/Sofia-Luceat-Project/os-browser/internal/search"
	"github.com/Sofia-Luceat-Project/os-browser/internal/settings"
	"github.com/Sofia-Luceat-Project/os-browser/internal/stats"
	"github.com/Sofia-Luceat-Project/os-browser/internal/terminal"
)

const appName = "os-browser"

// components are shared by the HTTP and MCP front ends.
type components struct {
	platform  platform.Platform
	resolver  *pathres.Resolver
	lister    *listing.Lister
	codec     *codec.Codec
	engine    *search.Engine
	catalog   *catalog.Catalog
	settings  *settings.Store
	collector *stats.Collector
	executor  *terminal.Executor
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.platform == nil {
		app.platform = platform.Current()
	}
	if app.assets == nil {
		app.assets = assets.Bundled()
	}
	if app.version == "" {
		app.version = "dev"
	}
	return app, nil
}

func setupLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func buildComponents(app *application) (*components, error) {
	cfg := app.config

	resolver, err := pathres.New(app.platform, cfg.Gateway.InitialDir)
	if err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}

	cat, err := catalog.Default()
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	store, err := settings.New(cfg.Settings.Dir)
	if err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}

	cwd := cfg.Terminal.DefaultCwd
	if cwd == "" {
		cwd = app.platform.Root()
	}

	return &components{
		platform:  app.platform,
		resolver:  resolver,
		lister:    listing.New(resolver, cfg.Gateway.ListingConcurrency),
		codec:     codec.New(),
		engine:    search.New(cat),
		catalog:   cat,
		settings:  store,
		collector: stats.New(),
		executor:  terminal.New(app.platform, cwd, cfg.Terminal.Enabled),
	}, nil
}

// Run starts the HTTP gateway with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := setupLogger(os.Stdout, cfg.App.LogLevel)

	c, err := buildComponents(app)
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("platform", c.platform.Name()),
		slog.String("initial_dir", c.resolver.InitialDir()),
		slog.String("settings_dir", c.settings.Dir()),
		slog.Int("apps", c.catalog.Len()),
		slog.Bool("terminal_enabled", c.executor.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))
	if c.executor.Enabled() {
		logger.Warn("terminal enabled: shell commands run unsandboxed with no timeout")
	}

	ui, err := assets.New(app.assets)
	if err != nil {
		return fmt.Errorf("init assets: %w", err)
	}

	broker := events.NewBroker()
	defer broker.Close()

	h := api.NewHandler(api.Deps{
		Resolver:      c.resolver,
		Lister:        c.lister,
		Codec:         c.codec,
		Engine:        c.engine,
		Catalog:       c.catalog,
		Settings:      c.settings,
		Collector:     c.collector,
		Executor:      c.executor,
		Broker:        broker,
		WatchDebounce: cfg.Gateway.WatchDebounce,
	})

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: api.NewGateway(h, ui),
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Closing the broker ends open event streams so Shutdown can drain.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the same components as MCP tools over stdio. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := setupLogger(os.Stderr, app.config.App.LogLevel)

	c, err := buildComponents(app)
	if err != nil {
		return err
	}

	srv := mcpserver.New(appName, app.version, mcpserver.Deps{
		Resolver:  c.resolver,
		Lister:    c.lister,
		Codec:     c.codec,
		Engine:    c.engine,
		Catalog:   c.catalog,
		Settings:  c.settings,
		Collector: c.collector,
		Executor:  c.executor,
	})

	logger.Info("Starting MCP server", slog.Any("tools", srv.ToolNames()))
	return srv.ServeStdio()
}
