// Package indexer builds and maintains the section index: the mapping
// from every section reference found across the configured file set to
// its owning file.
//
// # Building
//
// Build scans the configured files concurrently and merges the per-file
// reference lists. A reference defined in exactly one file lands in the
// primary lookup map; a reference defined in two or more files moves
// entirely into the duplicates map. Unreadable files are skipped, not
// fatal.
//
// Rebuilds are incremental per file: a previous index's FileRecord with
// matching mtime and size lets Build reuse the cached reference list
// without re-reading the file.
//
// # Staleness
//
// State wraps the index with a staleness flag flipped by watch callbacks
// and cleared only inside a rebuild. Rebuilds are lazy: nothing happens
// until the next EnsureFresh call observes the flag. EnsureFresh is
// serialized by a mutex so simultaneous stale observations cost one
// rebuild, and it returns the identical Index value when nothing changed.
package indexer
