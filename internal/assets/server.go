// Package assets serves the bundled single-page UI.
package assets

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

// IndexPath is the fallback document for unknown routes.
const IndexPath = "/index.html"

// ErrNoIndex is returned by New when the asset set lacks IndexPath.
var ErrNoIndex = errors.New("assets: index document missing")

type asset struct {
	content []byte
	mime    string
}

// Server holds every asset in memory; the set is fixed after New.
type Server struct {
	catalog map[string]asset
}

// New reads all regular files from fsys into memory, keyed by their
// slash-rooted path.
func New(fsys fs.FS) (*Server, error) {
	s := &Server{catalog: make(map[string]asset)}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		s.catalog["/"+p] = asset{content: data, mime: mimeFor(p)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, ok := s.catalog[IndexPath]; !ok {
		return nil, ErrNoIndex
	}
	return s, nil
}

// Serve returns the asset for requestPath. "/" and unknown paths yield the
// index document.
func (s *Server) Serve(requestPath string) ([]byte, string) {
	key := path.Clean("/" + requestPath)
	if key == "/" {
		key = IndexPath
	}
	a, ok := s.catalog[key]
	if !ok {
		a = s.catalog[IndexPath]
	}
	return a.content, a.mime
}

// Len reports how many assets are loaded.
func (s *Server) Len() int { return len(s.catalog) }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, ct := s.Serve(r.URL.Path)
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(body)
	}
}

func mimeFor(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
