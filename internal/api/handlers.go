package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sofia-Luceat-Project/os-browser/internal/catalog"
	"github.com/Sofia-Luceat-Project/os-browser/internal/codec"
	"github.com/Sofia-Luceat-Project/os-browser/internal/events"
	"github.com/Sofia-Luceat-Project/os-browser/internal/listing"
	"github.com/Sofia-Luceat-Project/os-browser/internal/pathres"
	"github.com/Sofia-Luceat-Project/os-browser/internal/platform"
	"github.com/Sofia-Luceat-Project/os-browser/internal/search"
	"github.com/Sofia-Luceat-Project/os-browser/internal/settings"
	"github.com/Sofia-Luceat-Project/os-browser/internal/stats"
	"github.com/Sofia-Luceat-Project/os-browser/internal/terminal"
)

const maxBodyBytes = 10 << 20 // 10 MB

// Deps are the components the gateway dispatches to.
type Deps struct {
	Resolver      *pathres.Resolver
	Lister        *listing.Lister
	Codec         *codec.Codec
	Engine        *search.Engine
	Catalog       *catalog.Catalog
	Settings      *settings.Store
	Collector     *stats.Collector
	Executor      *terminal.Executor
	Broker        *events.Broker
	WatchDebounce time.Duration
}

// Handler holds API route handlers.
type Handler struct {
	Deps
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{Deps: d}
}

// ListApps handles GET /api/apps.
//
//	@Summary	Application catalog keyed by app id
//	@Tags		apps
//	@Produce	json
//	@Success	200	{object}	map[string]models.AppDescriptor
//	@Router		/apps [get]
func (h *Handler) ListApps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Map())
}

// AppsForExtension handles GET /api/apps/for-extension?ext=.png.
func (h *Handler) AppsForExtension(w http.ResponseWriter, r *http.Request) {
	ext := r.URL.Query().Get("ext")
	if ext == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("ext is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.Catalog.ForExtension(ext))
}

// UserPaths handles GET /api/user-paths.
func (h *Handler) UserPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := platform.UserPaths(h.Resolver.Platform())
	if err != nil {
		writeError(w, r, "user paths", err)
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

// Drives handles GET /api/system/drives.
func (h *Handler) Drives(w http.ResponseWriter, r *http.Request) {
	drives, err := h.Resolver.Platform().Drives(r.Context())
	if err != nil {
		writeError(w, r, "drives", err)
		return
	}
	writeJSON(w, http.StatusOK, drives)
}

// ResolveLink handles GET /api/lnk/resolve?path=.
//
//	@Summary	Read a shortcut's target; unresolvable shortcuts echo the path
//	@Tags		files
//	@Produce	json
//	@Param		path	query		string	true	"Shortcut path"
//	@Success	200		{object}	LinkResponse
//	@Failure	400		{object}	errResponse
//	@Router		/lnk/resolve [get]
func (h *Handler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("path")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	p, err := h.Resolver.Resolve(raw)
	if err != nil {
		writeError(w, r, "resolve link", err)
		return
	}
	writeJSON(w, http.StatusOK, LinkResponse{Target: h.Resolver.ResolveLink(r.Context(), p)})
}

// GetSettings handles GET /api/settings/{appId}.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")
	doc, err := h.Settings.Get(appID)
	if err != nil {
		writeError(w, r, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// SetSettings handles POST /api/settings/{appId}.
//
//	@Summary	Replace an app's settings document
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Param		appId	path		string	true	"Application id"
//	@Success	200		{object}	SuccessResponse
//	@Failure	400		{object}	errResponse
//	@Router		/settings/{appId} [post]
func (h *Handler) SetSettings(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")
	if err := settings.ValidateAppID(appID); err != nil {
		writeError(w, r, "set settings", err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	doc, err := settings.Decode(body)
	if err != nil {
		writeError(w, r, "set settings", err)
		return
	}
	if err := h.Settings.Set(appID, doc); err != nil {
		writeError(w, r, "set settings", err)
		return
	}
	if h.Broker != nil {
		h.Broker.PublishSettingsUpdated(appID)
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Search handles GET /api/search?q=&path=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dir, err := h.Resolver.Resolve(q.Get("path"))
	if err != nil {
		writeError(w, r, "search", err)
		return
	}
	results, err := h.Engine.Search(q.Get("q"), dir)
	if err != nil {
		writeError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Collector.Snapshot(r.Context()))
}

// Terminal handles POST /api/terminal. Command failures are reported in the
// body with 200.
//
//	@Summary	Run a shell command
//	@Tags		system
//	@Accept		json
//	@Produce	json
//	@Param		body	body		TerminalRequest	true	"Command line"
//	@Success	200		{object}	terminal.Output
//	@Failure	403		{object}	errResponse
//	@Router		/terminal [post]
func (h *Handler) Terminal(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req TerminalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Command == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("command is required"))
		return
	}
	out, err := h.Executor.Run(r.Context(), req.Command, req.Cwd)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeError(w, r, "terminal", err)
		return
	}
	slog.Debug("terminal command finished", slog.String("command", req.Command), slog.Bool("stderr", out.Stderr != ""))
	writeJSON(w, http.StatusOK, out)
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
