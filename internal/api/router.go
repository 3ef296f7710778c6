package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router with all API routes. It is mounted under /api.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Catalog and host.
	r.Get("/apps", h.ListApps)
	r.Get("/apps/for-extension", h.AppsForExtension)
	r.Get("/user-paths", h.UserPaths)
	r.Get("/system/drives", h.Drives)
	r.Get("/lnk/resolve", h.ResolveLink)

	// Settings.
	r.Get("/settings/{appId}", h.GetSettings)
	r.Post("/settings/{appId}", h.SetSettings)

	// Filesystem.
	r.Get("/files", h.ListFiles)
	r.Get("/file/read", h.ReadFile)
	r.Get("/media", h.Media)
	r.Post("/file/write", h.WriteFile)
	r.Get("/search", h.Search)

	// System.
	r.Get("/stats", h.Stats)
	r.Post("/terminal", h.Terminal)
	r.Get("/status", h.Status)

	// Streams.
	r.Get("/events", h.Events)
	r.Get("/watch", h.Watch)

	// Routes are keyed by path and method, so a known path with the wrong
	// method is simply not found.
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)
	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}

// NewGateway builds the root handler: request middleware, CORS, the API
// under /api and the asset server for everything else.
func NewGateway(h *Handler, assets http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)

	r.Mount("/api", NewRouter(h))
	if assets != nil {
		r.NotFound(assets.ServeHTTP)
	}
	return r
}
