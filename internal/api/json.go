package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// statusFor maps a component error to its HTTP status.
func statusFor(err error) int {
	var (
		listErr *apperr.ListingError
		ioErr   *apperr.IOError
	)
	switch {
	case errors.As(err, &ioErr):
		return http.StatusInternalServerError
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission), errors.Is(err, apperr.ErrTerminalDisabled):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidPath),
		errors.Is(err, apperr.ErrNotDirectory),
		errors.Is(err, apperr.ErrIsDirectory),
		errors.Is(err, apperr.ErrUnsupportedEncoding),
		errors.Is(err, apperr.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.As(err, &listErr):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err with the status statusFor picks. Server faults are
// logged with the request path.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("uri", r.URL.RequestURI()), slog.String("error", err.Error()))
	} else {
		slog.Debug(op+" rejected", slog.String("uri", r.URL.RequestURI()), slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(err.Error()))
}
