// Package models defines the wire types shared by the gateway components.
package models

import (
	"encoding/json"
	"time"
)

// WildcardExtension in AppDescriptor.SupportedExtensions matches any extension.
const WildcardExtension = "*"

// FileEntry describes one child of a listed directory.
//
// When Error is set the entry is degraded: only Name, IsDirectory and Error
// are meaningful and only those are serialized.
type FileEntry struct {
	Name        string    `json:"name"`
	IsDirectory bool      `json:"isDirectory"`
	IsLnk       bool      `json:"isLnk"`
	LnkTarget   *string   `json:"lnkTarget"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mtime"`
	Extension   string    `json:"extension"`
	Error       string    `json:"error,omitempty"`
}

type degradedEntry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
	Error       string `json:"error"`
}

// MarshalJSON emits the reduced shape for degraded entries.
func (e FileEntry) MarshalJSON() ([]byte, error) {
	if e.Error != "" {
		return json.Marshal(degradedEntry{Name: e.Name, IsDirectory: e.IsDirectory, Error: e.Error})
	}
	type plain FileEntry
	return json.Marshal(plain(e))
}

// Listing is the result of enumerating one directory.
type Listing struct {
	CurrentPath string      `json:"currentPath"`
	Files       []FileEntry `json:"files"`
}

// AppDescriptor is one entry of the static application catalog.
type AppDescriptor struct {
	ID                  string   `json:"id" yaml:"id"`
	Name                string   `json:"name" yaml:"name"`
	Icon                string   `json:"icon" yaml:"icon"`
	ShowInContext       bool     `json:"showInContext" yaml:"show_in_context"`
	Pinned              bool     `json:"pinned" yaml:"pinned"`
	SupportedExtensions []string `json:"supportedExtensions,omitempty" yaml:"supported_extensions,omitempty"`
}

// Result types.
const (
	ResultFile   = "file"
	ResultFolder = "folder"
	ResultApp    = "app"
)

// SearchResult is a single search hit. App hits carry the full descriptor
// inline next to the type tag.
type SearchResult struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	*AppDescriptor
}
