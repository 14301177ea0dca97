package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/sectionref-mcp/internal/indexer"
	"github.com/dshills/sectionref-mcp/internal/parser"
)

// Store persists index snapshots in SQLite so a cold start can reuse the
// cached reference lists of unchanged files. It implements
// indexer.Cache.
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Open creates (or reopens) the snapshot store at dbPath, creating parent
// directories as needed and applying migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadIndex reads the persisted snapshot back as an Index suitable as the
// cache source for the next Build. Only the Files map matters for cache
// reuse; the lookup maps are left empty because Build re-derives them.
func (s *Store) LoadIndex(ctx context.Context) (*indexer.Index, error) {
	ix := &indexer.Index{
		Lookup:     make(map[string]string),
		Duplicates: make(map[string][]string),
		Files:      make(map[string]indexer.FileRecord),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT path, mod_time_ns, size_bytes FROM files")
	if err != nil {
		return nil, fmt.Errorf("failed to load file records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var rec indexer.FileRecord
		var modNS int64
		if err := rows.Scan(&rec.Path, &modNS, &rec.SizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		rec.ModTime = time.Unix(0, modNS)
		ix.Files[rec.Path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p := parser.New()
	sectionRows, err := s.db.QueryContext(ctx,
		"SELECT file_path, ref FROM sections ORDER BY file_path, position")
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	defer func() { _ = sectionRows.Close() }()

	for sectionRows.Next() {
		var path, refStr string
		if err := sectionRows.Scan(&path, &refStr); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		rec, ok := ix.Files[path]
		if !ok {
			continue
		}
		ref, err := p.Parse(refStr)
		if err != nil {
			// A corrupt row degrades to a rescan of that file.
			continue
		}
		rec.Refs = append(rec.Refs, ref)
		ix.Files[path] = rec
	}
	if err := sectionRows.Err(); err != nil {
		return nil, err
	}

	return ix, nil
}

// SaveIndex replaces the persisted snapshot with the given index.
func (s *Store) SaveIndex(ctx context.Context, ix *indexer.Index) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sections"); err != nil {
		return fmt.Errorf("failed to clear sections: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
		return fmt.Errorf("failed to clear file records: %w", err)
	}

	fileStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO files (path, mod_time_ns, size_bytes) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = fileStmt.Close() }()

	sectionStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO sections (file_path, position, ref) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer func() { _ = sectionStmt.Close() }()

	for path, rec := range ix.Files {
		if _, err := fileStmt.ExecContext(ctx, path, rec.ModTime.UnixNano(), rec.SizeBytes); err != nil {
			return fmt.Errorf("failed to store file record %s: %w", path, err)
		}
		for i, ref := range rec.Refs {
			if _, err := sectionStmt.ExecContext(ctx, path, i, ref.String()); err != nil {
				return fmt.Errorf("failed to store section %s: %w", ref, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

var _ indexer.Cache = (*Store)(nil)
