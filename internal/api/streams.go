package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
	"github.com/Sofia-Luceat-Project/os-browser/internal/events"
	"github.com/Sofia-Luceat-Project/os-browser/internal/watch"
)

// Events handles GET /api/events, the gateway-wide change stream.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.Broker == nil {
		writeJSON(w, http.StatusNotFound, errorBody("event stream disabled"))
		return
	}
	h.Broker.ServeHTTP(w, r)
}

// Watch handles GET /api/watch?path=. It streams dir.changed events for one
// directory until the client disconnects.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	dir, err := h.Resolver.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, r, "watch", err)
		return
	}
	info, err := os.Stat(dir)
	if err != nil {
		writeError(w, r, "watch", &apperr.ListingError{Path: dir, Err: err})
		return
	}
	if !info.IsDir() {
		writeError(w, r, "watch", fmt.Errorf("%w: %s", apperr.ErrNotDirectory, dir))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ch := make(chan []byte, 16)
	go func() {
		defer close(ch)
		err := watch.Dir(ctx, dir, h.WatchDebounce, slog.Default(), func(c watch.Change) {
			raw, err := events.Frame(events.NewEvent(events.DirChanged, c))
			if err != nil {
				return
			}
			select {
			case ch <- raw:
			default:
			}
		})
		if err != nil {
			slog.Warn("watch ended", slog.String("path", dir), slog.String("error", err.Error()))
		}
	}()

	events.Stream(w, r, ch)
}
