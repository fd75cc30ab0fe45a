package runner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"appcheck/pkg/logging"
)

// Watcher reruns scenarios whenever a configuration or scenario document
// changes on disk. Bursts of filesystem events (editor save patterns) are
// debounced into a single rerun.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher over the given directory trees.
func NewWatcher(dirs []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}

	w := &Watcher{
		dirs:     dirs,
		debounce: debounce,
		watcher:  fsWatcher,
	}

	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			fsWatcher.Close()
			return nil, err
		}
	}
	return w, nil
}

// addRecursive registers a directory and its subdirectories.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Run blocks, invoking rerun after each debounced batch of YAML changes,
// until the context is canceled.
func (w *Watcher) Run(ctx context.Context, rerun func(ctx context.Context)) error {
	defer w.watcher.Close()

	logging.Info("Watch", "watching %v for changes", w.dirs)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isYAMLFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("Watch", "change detected: %s (%s)", event.Name, event.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Watch", "watcher error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			rerun(ctx)
			logging.Info("Watch", "run finished, watching for changes")
		}
	}
}
