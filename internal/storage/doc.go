// Package storage persists index snapshots in SQLite.
//
// The snapshot holds one row per configured file (path, mtime, size) and
// the file's cached section references in order of appearance. On
// startup the snapshot seeds the first Build as its "previous index", so
// files unchanged since the last run are not re-read; after every
// rebuild the snapshot is replaced wholesale.
//
// Two drivers are supported via build tags: modernc.org/sqlite (pure Go,
// the default) and mattn/go-sqlite3 (cgo, behind the sqlite_cgo tag).
package storage
