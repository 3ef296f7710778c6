// Package watch reports changes to the entries of a single directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Sofia-Luceat-Project/os-browser/internal/apperr"
)

// DefaultDebounce is the quiet period before pending changes are reported.
const DefaultDebounce = 200 * time.Millisecond

// Change lists the entry names of Path that were created, written, removed
// or renamed since the previous report.
type Change struct {
	Path  string   `json:"path"`
	Names []string `json:"names"`
}

// Callback receives debounced changes.
type Callback func(Change)

// Dir watches dir (not its subdirectories) until ctx is cancelled and calls
// cb once per burst of activity. It returns early if dir cannot be watched.
func Dir(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	info, err := os.Stat(dir)
	if err != nil {
		return &apperr.ListingError{Path: dir, Err: err}
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", apperr.ErrNotDirectory, dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return &apperr.ListingError{Path: dir, Err: err}
	}
	logger.Debug("watch: started", slog.String("path", dir))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watch: stopped", slog.String("path", dir))
			return nil

		case <-fire:
			if len(pending) == 0 {
				continue
			}
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			slices.Sort(names)
			clear(pending)
			cb(Change{Path: dir, Names: names})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending[filepath.Base(ev.Name)] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if errors.Is(watchErr, fsnotify.ErrEventOverflow) {
				logger.Warn("watch: event overflow", slog.String("path", dir))
				continue
			}
			logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}
