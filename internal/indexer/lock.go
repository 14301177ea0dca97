package indexer

import "sync/atomic"

// RebuildLock provides non-blocking lock semantics using atomic
// operations. It is the advisory "rebuilding" guard: EnsureFresh holds it
// for the duration of a rebuild so status queries can report an
// in-flight rebuild without blocking on the state mutex.
type RebuildLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *RebuildLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *RebuildLock) Release() {
	l.state.Store(0)
}

// Held reports whether the lock is currently acquired.
func (l *RebuildLock) Held() bool {
	return l.state.Load() == 1
}
