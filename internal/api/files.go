package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
	"github.com/Sofia-Luceat-Project/os-browser/internal/codec"
)

// DetectedEncodingHeader carries the sniffed encoding of a text read.
const DetectedEncodingHeader = "X-Detected-Encoding"

// ListFiles handles GET /api/files?path=.
//
//	@Summary	List a directory
//	@Tags		files
//	@Produce	json
//	@Param		path	query		string	false	"Directory; empty means the initial directory"
//	@Success	200		{object}	models.Listing
//	@Failure	403		{object}	errResponse
//	@Failure	404		{object}	errResponse
//	@Router		/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	dir, err := h.Resolver.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, r, "list files", err)
		return
	}
	listing, err := h.Lister.List(r.Context(), dir)
	if err != nil {
		writeError(w, r, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// ReadFile handles GET /api/file/read?path=&encoding=. The body is either
// the hex dump (encoding=hex) or the text transcoded to UTF-8. A file that
// cannot be read, missing or not, is a server error.
func (h *Handler) ReadFile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := h.Resolver.Resolve(q.Get("path"))
	if err != nil {
		writeError(w, r, "read file", err)
		return
	}

	hint := q.Get("encoding")
	if hint == codec.HexMode {
		dump, err := h.Codec.ReadHex(p)
		if err != nil {
			writeError(w, r, "read file", err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(dump))
		return
	}

	text, err := h.Codec.ReadText(p, hint)
	if err != nil {
		writeError(w, r, "read file", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(DetectedEncodingHeader, text.Detected)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text.Content))
}

// Media handles GET /api/media?path=. Bytes are served verbatim with range
// support and a type derived from the extension.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	p, err := h.Resolver.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	f, err := os.Open(p)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	if info.IsDir() {
		writeError(w, r, "media", fmt.Errorf("%w: %s", apperr.ErrIsDirectory, p))
		return
	}
	http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
}

// WriteFile handles POST /api/file/write?path=.
//
//	@Summary	Overwrite a file with UTF-8 text
//	@Tags		files
//	@Accept		json
//	@Produce	json
//	@Param		path	query		string				true	"Target file"
//	@Param		body	body		WriteFileRequest	true	"New content"
//	@Success	200		{object}	SuccessResponse
//	@Failure	400		{object}	errResponse
//	@Failure	500		{object}	errResponse
//	@Router		/file/write [post]
func (h *Handler) WriteFile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Resolver.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, r, "write file", err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req WriteFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	res, err := h.Codec.Write(p, *req.Content)
	if err != nil {
		writeError(w, r, "write file", err)
		return
	}
	slog.Info("file written", slog.String("path", p), slog.Int("size", res.Size))
	if h.Broker != nil {
		h.Broker.PublishFileWritten(p, int64(res.Size), res.Checksum)
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
