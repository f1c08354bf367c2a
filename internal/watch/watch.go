// Package watch triggers a callback when pages under a directory change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ziadkadry99/navpatch/internal/walker"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Func is called with the sorted, deduplicated paths of changed pages.
type Func func(ctx context.Context, changed []string)

// Watcher watches a directory tree recursively.
type Watcher struct {
	Debounce time.Duration
	// Match selects the paths that trigger a callback. Defaults to walker.IsPage.
	Match  func(path string) bool
	Logger *slog.Logger
}

// Run watches dir until ctx is cancelled. Each settled burst of matching
// changes results in one call to fn. Calls are serialized.
func (w *Watcher) Run(ctx context.Context, dir string, fn Func) error {
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	match := w.Match
	if match == nil {
		match = walker.IsPage
	}
	log := w.Logger
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, dir); err != nil {
		return err
	}

	pending := map[string]struct{}{}
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				// New directories need their own watch.
				if err := addRecursive(fw, ev.Name); err != nil {
					log.Debug("watch add failed", "path", ev.Name, "error", err)
				}
			}
			if ev.Has(fsnotify.Chmod) || !match(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]struct{}{}
			log.Debug("pages changed", "count", len(changed))
			fn(ctx, changed)
		}
	}
}

func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
