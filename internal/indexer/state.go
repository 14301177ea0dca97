package indexer

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Cache persists index snapshots across process restarts so a cold start
// can reuse cached reference lists for unchanged files.
type Cache interface {
	LoadIndex(ctx context.Context) (*Index, error)
	SaveIndex(ctx context.Context, ix *Index) error
}

// State is the lifecycle wrapper around the index: the staleness flag,
// the rebuild serialization, and the watch handle. It is created at
// process start and owns its watch handle until Close.
//
// Rebuilds are pull-based: watch callbacks only flip the staleness flag,
// and the next EnsureFresh call performs the rebuild. Concurrent stale
// observations are serialized by a mutex.
type State struct {
	mu      sync.Mutex
	stale   atomic.Bool
	rebuild RebuildLock

	index atomic.Pointer[Index]
	files []string
	cache Cache

	watch   io.Closer
	watchMu sync.Mutex
}

// Option configures a State.
type Option func(*State)

// WithCache attaches a persistent snapshot cache. Loading is best-effort:
// a broken cache degrades to a full scan.
func WithCache(c Cache) Option {
	return func(s *State) { s.cache = c }
}

// NewState builds the initial index over the configured files and wraps
// it. The file list is the resolved, ordered, absolute list produced by
// the configuration layer.
func NewState(ctx context.Context, files []string, opts ...Option) (*State, error) {
	s := &State{files: append([]string(nil), files...)}
	for _, opt := range opts {
		opt(s)
	}

	var prev *Index
	if s.cache != nil {
		loaded, err := s.cache.LoadIndex(ctx)
		if err != nil {
			slog.Warn("index cache unavailable, performing full scan", "error", err)
		} else {
			prev = loaded
		}
	}

	ix, err := Build(ctx, s.files, prev)
	if err != nil {
		return nil, err
	}
	s.index.Store(ix)
	s.saveSnapshot(ctx, ix)

	return s, nil
}

// SetWatchHandle hands ownership of the watch handle to the state; it is
// released on Close.
func (s *State) SetWatchHandle(h io.Closer) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	s.watch = h
}

// MarkStale records that on-disk content may have diverged from the last
// build. It performs no I/O and is safe to call from watch callbacks.
func (s *State) MarkStale() {
	s.stale.Store(true)
}

// Stale reports whether a rebuild is pending.
func (s *State) Stale() bool {
	return s.stale.Load()
}

// Rebuilding reports whether a rebuild is currently in flight.
func (s *State) Rebuilding() bool {
	return s.rebuild.Held()
}

// Index returns the most recent fully-built index without freshness
// checks.
func (s *State) Index() *Index {
	return s.index.Load()
}

// EnsureFresh returns the current index, rebuilding it first if a watched
// file changed since the last build. When the index is not stale the
// exact same Index value is returned, so callers can use identity for
// cheap no-op checks. Coalesced change notifications cost one rebuild at
// most: the flag is cleared inside the same critical section.
func (s *State) EnsureFresh(ctx context.Context) (*Index, error) {
	if !s.stale.Load() {
		return s.index.Load(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have rebuilt while we waited on the mutex.
	if !s.stale.Load() {
		return s.index.Load(), nil
	}

	s.rebuild.TryAcquire()
	defer s.rebuild.Release()

	ix, err := Build(ctx, s.files, s.index.Load())
	if err != nil {
		return nil, err
	}
	s.index.Store(ix)
	s.stale.Store(false)
	s.saveSnapshot(ctx, ix)

	return ix, nil
}

// Close releases the watch handle. Safe to call with a rebuild in flight
// or a debounce timer pending; the watcher owns its timers and stops them
// on close.
func (s *State) Close() error {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	if s.watch == nil {
		return nil
	}
	err := s.watch.Close()
	s.watch = nil
	return err
}

func (s *State) saveSnapshot(ctx context.Context, ix *Index) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SaveIndex(ctx, ix); err != nil {
		slog.Warn("failed to persist index snapshot", "error", err)
	}
}
