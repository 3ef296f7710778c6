package platform

import (
	"context"
	"errors"
	"os/exec"
)

// ErrShortcutsUnsupported is returned by platforms without shortcut files.
var ErrShortcutsUnsupported = errors.New("platform: shortcuts not supported")

// POSIX is the variant for Unix-like systems: a single "/" volume and no
// shortcut files.
type POSIX struct {
	goos string
}

// NewPOSIX returns the POSIX platform labelled goos.
func NewPOSIX(goos string) *POSIX {
	return &POSIX{goos: goos}
}

func (p *POSIX) Name() string            { return p.goos }
func (p *POSIX) Root() string            { return "/" }
func (p *POSIX) SupportsShortcuts() bool { return false }

func (p *POSIX) ResolveShortcut(_ context.Context, _ string) (string, error) {
	return "", ErrShortcutsUnsupported
}

func (p *POSIX) Drives(_ context.Context) ([]string, error) {
	return []string{"/"}, nil
}

func (p *POSIX) ShellCommand(line string) *exec.Cmd {
	return exec.Command("sh", "-c", line)
}
