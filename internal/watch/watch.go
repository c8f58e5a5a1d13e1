// Package watch rebuilds documents when their source files change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the tree must stay quiet before a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Debounce is the quiet period after the last change. Zero means
	// DefaultDebounce.
	Debounce time.Duration

	// Extensions lists the file extensions that trigger a rebuild.
	// Empty means .yaml, .yml, .md and .bib.
	Extensions []string

	// ExcludeDirs lists directory names that are never watched.
	// Hidden directories are always skipped.
	ExcludeDirs []string

	// IgnoreFiles lists files whose changes are ignored, typically the
	// outputs of the rebuild itself.
	IgnoreFiles []string
}

// RebuildFunc is called after a quiet period with the changed paths,
// relative to the watched root and sorted.
type RebuildFunc func(ctx context.Context, changed []string) error

// Watcher watches an input tree recursively.
type Watcher struct {
	root       string
	debounce   time.Duration
	extensions map[string]bool
	excludes   map[string]bool
	ignore     map[string]bool
	fsw        *fsnotify.Watcher
	logger     *zap.Logger
	pending    map[string]bool
}

// New starts watching every directory under root. Changes made after New
// returns are seen by Run.
func New(root string, cfg Config, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:       abs,
		debounce:   cfg.Debounce,
		extensions: make(map[string]bool),
		excludes:   map[string]bool{".git": true},
		ignore:     make(map[string]bool),
		logger:     logger,
		pending:    make(map[string]bool),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = []string{".yaml", ".yml", ".md", ".bib"}
	}
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		w.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range cfg.ExcludeDirs {
		w.excludes[dir] = true
	}
	for _, f := range cfg.IgnoreFiles {
		if p, err := filepath.Abs(f); err == nil {
			w.ignore[p] = true
		}
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.addRecursive(w.root); err != nil {
		w.fsw.Close()
		return nil, err
	}
	return w, nil
}

// Root returns the absolute watched root.
func (w *Watcher) Root() string {
	return w.root
}

// Close stops watching. Run returns after Close.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers debounced changes to rebuild until ctx is done or the
// watcher is closed. A failing rebuild is logged and watching continues.
// Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, rebuild RebuildFunc) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			changed := w.drain()
			if len(changed) == 0 {
				continue
			}
			start := time.Now()
			if err := rebuild(ctx, changed); err != nil {
				w.logger.Error("rebuild failed", zap.Strings("changed", changed), zap.Error(err))
				continue
			}
			w.logger.Info("rebuilt",
				zap.Strings("changed", changed),
				zap.Duration("took", time.Since(start)),
			)
		}
	}
}

// handle records a relevant event. Reports whether it was relevant.
func (w *Watcher) handle(event fsnotify.Event) bool {
	path := event.Name
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return w.handleNewDirectory(path)
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}
	return w.record(path, event.Op.String())
}

// handleNewDirectory watches a directory created after New. Files written
// into it before the watch was added are recorded from a directory scan.
func (w *Watcher) handleNewDirectory(dir string) bool {
	if w.skipDir(filepath.Base(dir)) {
		return false
	}
	if err := w.addRecursive(dir); err != nil {
		w.logger.Warn("failed to watch new directory", zap.String("path", dir), zap.Error(err))
		return false
	}
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && w.record(path, "scan") {
			found = true
		}
		return nil
	})
	return found
}

func (w *Watcher) record(path, op string) bool {
	if w.ignore[path] || !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return false
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if w.skipDir(part) {
			return false
		}
	}

	w.pending[filepath.ToSlash(rel)] = true
	w.logger.Debug("change detected", zap.String("path", rel), zap.String("op", op))
	return true
}

func (w *Watcher) drain() []string {
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	clear(w.pending)
	slices.Sort(changed)
	return changed
}

func (w *Watcher) skipDir(name string) bool {
	return w.excludes[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching directory", zap.String("path", path))
		return nil
	})
}
