package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the default debounce interval for file events.
const debounceDefault = 300 * time.Millisecond

// Watcher watches policy and source files and reports changed paths
// after a debounce window. Rapid save bursts from editors collapse
// into a single callback.
type Watcher struct {
	watcher  *fsnotify.Watcher
	handler  func(paths []string)
	debounce time.Duration
}

// New creates a watcher. The handler receives the sorted set of paths
// that changed during one debounce window.
func New(handler func(paths []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		handler:  handler,
		debounce: debounceDefault,
	}, nil
}

// AddFile watches a single file. Missing files are skipped so a
// project without a policy file can still be watched.
func (w *Watcher) AddFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return w.watcher.Add(path)
}

// AddTree watches every directory under root. Hidden directories and
// common build output are skipped; fsnotify has no recursive mode so
// each directory is added individually.
func (w *Watcher) AddTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Close releases the underlying file watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers change events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var mu sync.Mutex
	pending := make(map[string]bool)
	var timer *time.Timer

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		pending = make(map[string]bool)
		mu.Unlock()

		if len(paths) == 0 {
			return
		}
		sort.Strings(paths)
		w.handler(paths)
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if strings.HasSuffix(event.Name, ".tmp") || strings.HasSuffix(event.Name, "~") {
				continue
			}
			mu.Lock()
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, flush)
			mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
