// Package settings persists one opaque JSON document per application id.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
)

// Document is an application's settings. It has no fixed schema.
type Document map[string]any

var appIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Store keeps settings documents as {appId}.json under a single directory.
// Writes replace the whole document; concurrent writers race and the last
// rename wins.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created lazily on
// first write.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("settings: resolve dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateAppID checks that id is usable as a file name stem.
func ValidateAppID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Length(1, 128),
		validation.Match(appIDRe),
		validation.NotIn(".", ".."),
	)
	if err != nil {
		return fmt.Errorf("%w: app id %q: %v", apperr.ErrInvalidPath, id, err)
	}
	return nil
}

func (s *Store) path(appID string) (string, error) {
	if err := ValidateAppID(appID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, appID+".json"), nil
}

// Get returns the stored document, or an empty one if none was ever stored.
func (s *Store) Get(appID string) (Document, error) {
	p, err := s.path(appID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", appID, err)
	}
	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("settings: decode %s: %w", appID, err)
	}
	return doc, nil
}

// Decode parses a request body into a Document. Only JSON objects are accepted.
func Decode(body []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidDocument, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", apperr.ErrInvalidDocument)
	}
	return doc, nil
}

// Set replaces the document for appID: tmp file → fsync → rename.
func (s *Store) Set(appID string, doc Document) error {
	p, err := s.path(appID)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = Document{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidDocument, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+appID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("settings: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("settings: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close temp: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("settings: rename: %w", err)
	}
	success = true
	return nil
}
