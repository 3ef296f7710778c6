// Package testutil provides shared test helpers for building directory trees
// and faking platform capabilities.
package testutil

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// ErrNoShortcut is returned by FakePlatform for unknown shortcut paths.
var ErrNoShortcut = errors.New("testutil: no such shortcut")

// WriteTree creates files under root. Keys ending in "/" create directories.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			if err := os.MkdirAll(p, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TempTree creates a temporary directory populated by WriteTree.
func TempTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, files)
	return dir
}

// FakePlatform is a shortcut-capable platform whose shortcut table is static.
type FakePlatform struct {
	RootDir   string
	Shortcuts map[string]string
	DriveList []string

	mu      sync.Mutex
	LastErr error
}

func (f *FakePlatform) Name() string { return "fake" }

func (f *FakePlatform) Root() string {
	if f.RootDir == "" {
		return string(filepath.Separator)
	}
	return f.RootDir
}

func (f *FakePlatform) SupportsShortcuts() bool { return true }

func (f *FakePlatform) ResolveShortcut(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.Shortcuts[path]
	if !ok {
		f.LastErr = ErrNoShortcut
		return "", ErrNoShortcut
	}
	f.LastErr = nil
	return target, nil
}

func (f *FakePlatform) Drives(_ context.Context) ([]string, error) {
	if f.DriveList == nil {
		return []string{f.Root()}, nil
	}
	return f.DriveList, nil
}

func (f *FakePlatform) ShellCommand(line string) *exec.Cmd {
	return exec.Command("sh", "-c", line)
}
