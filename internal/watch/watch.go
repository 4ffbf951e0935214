// Package watch re-runs analysis when supported source files change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/morozRed/bit/internal/fileutil"
	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/parser"
)

// DefaultDebounce is how long the watcher waits for a burst of events to end.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Root     string
	Registry *parser.Registry
	Ignore   *ignore.Matcher
	Debounce time.Duration
	Logger   *slog.Logger
}

// Handler runs once per settled batch of changes. Paths are relative to the
// root, slash-separated and sorted. Calls never overlap.
type Handler func(ctx context.Context, changed []string) error

// Watcher tracks content hashes of supported files under Root and calls a
// Handler when any of them changes.
type Watcher struct {
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	hashes  map[string]string
}

// New starts watching Root and every directory below it that is not ignored.
func New(opts Options) (*Watcher, error) {
	if opts.Registry == nil {
		return nil, errors.New("watch: parser registry is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	hashes, err := fileutil.ScanFileHashes(opts.Root, opts.Registry, opts.Ignore)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		opts:    opts,
		logger:  logger,
		watcher: fw,
		hashes:  hashes,
	}
	if err := w.addRecursive(opts.Root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run dispatches settled changes to handle until ctx is cancelled. A handler
// error is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if rel, changed := w.handleEvent(event); changed {
				pending[rel] = true
				timer.Reset(w.opts.Debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := fileutil.MapKeysSorted(pending)
			pending = make(map[string]bool)
			w.logger.Debug("files changed", "files", changed)
			if err := handle(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Error("analysis failed", "error", err)
			}
		}
	}
}

// handleEvent updates the hash table and reports whether a supported file's
// content actually changed.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.opts.Root, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.opts.Ignore.ShouldIgnore(rel, true) {
				if err := w.addRecursive(event.Name); err != nil {
					w.logger.Warn("failed to watch directory", "dir", rel, "error", err)
				}
			}
			return "", false
		}
	}

	if !w.opts.Registry.Supports(rel) || w.opts.Ignore.ShouldIgnore(rel, false) {
		return "", false
	}

	previous, known := w.hashes[rel]
	hash, err := fileutil.HashFile(event.Name)
	if err != nil {
		if !known {
			return "", false
		}
		delete(w.hashes, rel)
		return rel, true
	}
	if known && previous == hash {
		return "", false
	}
	w.hashes[rel] = hash
	return rel, true
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.opts.Root, path)
		if relErr == nil && w.opts.Ignore.ShouldIgnore(filepath.ToSlash(rel), true) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
