// Package platform isolates the OS-specific capabilities the gateway relies
// on: shortcut resolution, volume enumeration and the command shell.
//
// Implementations are selected by GOOS through a registry so that other
// targets can plug in their own variant, including explicit no-op ones.
package platform

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// ShortcutExtension is the file extension of shortcut files.
const ShortcutExtension = ".lnk"

// Platform is the per-OS capability set.
type Platform interface {
	// Name returns the GOOS value the implementation serves.
	Name() string
	// Root returns the volume root used as the default initial directory.
	Root() string
	// SupportsShortcuts reports whether ResolveShortcut can ever succeed.
	SupportsShortcuts() bool
	// ResolveShortcut returns the target stored in a shortcut file.
	ResolveShortcut(ctx context.Context, path string) (string, error)
	// Drives lists the volume roots.
	Drives(ctx context.Context) ([]string, error)
	// ShellCommand builds a command that runs line through the OS shell.
	ShellCommand(line string) *exec.Cmd
}

// Factory builds a Platform.
type Factory func() Platform

var (
	mu       sync.RWMutex
	registry = map[string]Factory{
		"windows": func() Platform { return NewWindows() },
	}
)

// Register installs f as the implementation for goos, replacing any previous one.
func Register(goos string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[goos] = f
}

// For returns the implementation registered for goos, or the POSIX variant.
func For(goos string) Platform {
	mu.RLock()
	f, ok := registry[goos]
	mu.RUnlock()
	if ok {
		return f()
	}
	return NewPOSIX(goos)
}

// Current returns the implementation for the running OS.
func Current() Platform {
	return For(runtime.GOOS)
}

// UserPaths returns the well-known user directories shown as quick-access locations.
func UserPaths(p Platform) (map[string]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"os_root":   p.Root(),
		"homedir":   home,
		"desktop":   filepath.Join(home, "Desktop"),
		"documents": filepath.Join(home, "Documents"),
		"downloads": filepath.Join(home, "Downloads"),
	}, nil
}
