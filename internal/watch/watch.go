// Package watch triggers site rebuilds when source files or template
// fragments change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 200 * time.Millisecond

// RebuildFunc runs one build. Its error is logged; watching continues.
type RebuildFunc func(ctx context.Context) error

// Config selects what to watch.
type Config struct {
	// SourceDir is watched recursively; directories created later are added.
	SourceDir string
	// Files are individual files (the template fragments) whose changes
	// also trigger a rebuild. Their parent directories are watched.
	Files []string
	// Debounce is the quiet period after the last event before rebuilding.
	Debounce time.Duration
}

// Watch starts an fsnotify watcher and calls rebuild after each burst of
// relevant events, until ctx is cancelled.
func Watch(ctx context.Context, cfg Config, logger *slog.Logger, rebuild RebuildFunc) error {
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	root, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return fmt.Errorf("watch: resolve source: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: new watcher: %w", err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return fmt.Errorf("watch: add source: %w", err)
	}

	files := make(map[string]struct{}, len(cfg.Files))
	parents := make(map[string]struct{})
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		files[abs] = struct{}{}
		parents[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range parents {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}

	relevant := func(path string) bool {
		if _, ok := files[path]; ok {
			return true
		}
		return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Int("files", len(files)))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
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
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			logger.Debug("watcher: rebuilding")
			if err := rebuild(ctx); err != nil {
				logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			path := filepath.Clean(ev.Name)
			if !relevant(path) {
				continue
			}

			// New directories under the source tree must be watched too.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, path); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", path),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", path))
					}
				}
			}

			logger.Debug("watcher: change", slog.String("path", path), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
