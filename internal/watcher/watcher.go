// Package watcher observes the configured files and flips the index
// staleness flag when any of them changes. Its only job is the flag:
// rebuilds are pull-based and happen on the next EnsureFresh call, so a
// burst of notifications costs at most one rebuild.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces rapid change bursts (editor save storms,
// rename-and-replace) into a single staleness notification.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches the configured file set. The parent directories are
// watched rather than the files themselves, because editors commonly
// replace files via rename and a direct file watch dies with the old
// inode.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	onStale   func()

	// watched holds the configured files, cleaned, for event filtering.
	watched map[string]bool

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// New starts watching the given files. onStale is invoked (debounced)
// after any write, create, remove, or rename touching one of them.
func New(files []string, debounce time.Duration, onStale func()) (*Watcher, error) {
	if onStale == nil {
		return nil, os.ErrInvalid
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		onStale:   onStale,
		watched:   make(map[string]bool, len(files)),
	}

	dirs := make(map[string]bool)
	for _, file := range files {
		clean := filepath.Clean(file)
		w.watched[clean] = true
		dirs[filepath.Dir(clean)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	w.onStale()
}

// Close releases the watch handles. Safe to call with a debounce timer
// pending: the timer is stopped and a callback that already fired is
// suppressed, so nothing runs after teardown.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsWatcher.Close()
}
