// Package terminal runs one shell command line per request.
package terminal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
	"github.com/Sofia-Luceat-Project/os-browser/internal/platform"
)

// Output is what the command printed on each stream.
type Output struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Executor is a thin wrapper around the platform shell.
type Executor struct {
	platform   platform.Platform
	defaultCwd string
	enabled    bool
}

// New creates an Executor. An empty defaultCwd falls back to the process
// working directory at run time.
func New(p platform.Platform, defaultCwd string, enabled bool) *Executor {
	return &Executor{platform: p, defaultCwd: defaultCwd, enabled: enabled}
}

// Enabled reports whether commands may run.
func (e *Executor) Enabled() bool { return e.enabled }

// Run executes command through the shell in cwd. Both streams are returned
// whether or not the command succeeds. A command that fails or exits non-zero
// is not an error: when it wrote nothing to stderr, the failure text takes
// its place.
func (e *Executor) Run(ctx context.Context, command, cwd string) (Output, error) {
	if !e.enabled {
		return Output{}, apperr.ErrTerminalDisabled
	}

	dir, err := e.workDir(cwd)
	if err != nil {
		return Output{}, err
	}

	cmd := e.platform.ShellCommand(command)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return Output{Stderr: err.Error()}, nil
	}
	go func() { done <- cmd.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		// The client went away; the process is left to finish on its own.
		slog.Info("terminal client disconnected", "command", command)
		return Output{}, ctx.Err()
	}

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if out.Stderr == "" {
			out.Stderr = err.Error()
		}
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			slog.Debug("terminal command failed", "command", command, "exit_code", exitErr.ExitCode())
		}
	}
	return out, nil
}

func (e *Executor) workDir(cwd string) (string, error) {
	if cwd == "" {
		cwd = e.defaultCwd
	}
	if cwd == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", errors.Join(apperr.ErrInvalidPath, err)
	}
	return abs, nil
}
