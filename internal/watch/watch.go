// Package watch reruns a full build whenever watched source directories
// change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before rebuilding.
const DefaultDebounce = 250 * time.Millisecond

// RebuildFunc performs one full build.
type RebuildFunc func(ctx context.Context) error

// Watcher triggers rebuilds from filesystem events under a set of
// directories, including subdirectories created after it starts.
type Watcher struct {
	dirs     []string
	rebuild  RebuildFunc
	debounce time.Duration
	log      *slog.Logger
}

// New returns a Watcher over dirs. Directories that do not exist are
// ignored.
func New(dirs []string, rebuild RebuildFunc, debounce time.Duration, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dirs: dirs, rebuild: rebuild, debounce: debounce, log: log}
}

// Run blocks until ctx is done. Rebuild errors are logged, not returned;
// only a failure to set up the watcher is an error.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	watched := 0
	for _, dir := range w.dirs {
		n, err := addTree(fw, dir)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		return fmt.Errorf("nothing to watch: none of %v exist", w.dirs)
	}
	w.log.Info("watching for changes", "dirs", fmt.Sprint(w.dirs), "watched", watched)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if _, err := addTree(fw, ev.Name); err != nil {
						w.log.Warn("could not watch new directory", "dir", ev.Name, "err", err)
					}
				}
			}
			w.log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)

		case <-timer.C:
			w.log.Info("rebuilding")
			if err := w.rebuild(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("rebuild failed", "err", err)
			}
		}
	}
}

// addTree watches dir and every directory below it, returning how many were
// added. A missing dir adds nothing.
func addTree(fw *fsnotify.Watcher, dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		n++
		return nil
	})
	return n, err
}
