// Package watch reports changes to a single dataset file.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/DataSum/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor or exporter
// produces when rewriting a file
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls a function after the watched file changes
type Watcher struct {
	path     string
	debounce time.Duration
	log      *logger.Logger
}

// New creates a watcher for path. The parent directory is watched so that
// files replaced by rename are still seen.
func New(path string, debounce time.Duration, log *logger.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid watch path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot watch a directory: %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{path: abs, debounce: debounce, log: log}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string { return w.path }

// Run blocks until ctx is done, calling onChange once per burst of
// changes. An error from onChange is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.log.Warn("failed to close watcher: %v", err)
		}
	}()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}
	w.log.Debug("watching %s", w.path)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected: %s", event)
			timer.Reset(w.debounce)

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				w.log.Error("reload failed: %v", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
