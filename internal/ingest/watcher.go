package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"commentarchive/internal/logger"
)

// DefaultDebounce is how long the watcher waits for further changes.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reports batches of changed record files below a data directory.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *logger.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher watches root and every directory below it.
func NewWatcher(root string, debounce time.Duration, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if log == nil {
		log = logger.Discard()
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		log:      log.With("component", "watcher"),
		pending:  make(map[string]struct{}),
	}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("Failed to watch directory", "path", path, "error", err)
		}

		return nil
	})
}

// Run delivers changed JSON paths to onChange, at most once per debounce
// interval, until ctx is done. onChange runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

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
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("Watcher queue overflowed", "error", err)
				continue
			}
			w.log.Error("Watcher error", "error", err)

		case <-timer.C:
			if paths := w.flush(); len(paths) > 0 {
				onChange(ctx, paths)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.log.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return false
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".json") || event.Op == fsnotify.Chmod {
		return false
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()

	w.log.Debug("Record change detected", "path", event.Name, "op", event.Op.String())

	return true
}

func (w *Watcher) flush() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})

	sort.Strings(paths)

	return paths
}
