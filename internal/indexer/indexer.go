package indexer

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/sectionref-mcp/internal/parser"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// FileRecord tracks per-file metadata used to decide, on rebuild, whether
// a file must be re-parsed. A file is unchanged iff both mtime and size
// match the previous record; size is the tie-breaker against filesystems
// with coarse mtime resolution.
type FileRecord struct {
	Path      string
	ModTime   time.Time
	SizeBytes int64
	Refs      []types.Ref
}

// Index maps every section reference found across the configured file set
// to its owning file. A reference defined in two or more files lives in
// Duplicates and never in Lookup. Readers only ever observe a fully-built
// Index; it is never mutated in place.
type Index struct {
	Lookup     map[string]string   // reference key -> absolute file path
	Duplicates map[string][]string // reference key -> contributing files
	Files      map[string]FileRecord
	BuiltAt    time.Time
}

// Resolve maps a reference to its owning file. It fails with a
// DuplicateError naming all contributing files when the reference is
// duplicated, and with a NotFoundError when it is absent from both maps.
func (ix *Index) Resolve(ref types.Ref) (string, error) {
	key := ref.String()
	if path, ok := ix.Lookup[key]; ok {
		return path, nil
	}
	if files, ok := ix.Duplicates[key]; ok {
		return "", &types.DuplicateError{Ref: key, Files: files}
	}
	return "", &types.NotFoundError{Ref: key}
}

// Refs returns every uniquely-defined reference, sorted. Duplicated
// references are excluded: wildcards expand over the primary lookup map,
// and the validator is the surface that reports duplicates.
func (ix *Index) Refs() []types.Ref {
	p := parser.New()
	refs := make([]types.Ref, 0, len(ix.Lookup))
	for key := range ix.Lookup {
		ref, err := p.Parse(key)
		if err != nil {
			continue
		}
		refs = append(refs, ref)
	}
	types.SortRefs(refs)
	return refs
}

// Prefixes returns the sorted set of prefixes defined anywhere in the
// index, duplicates included.
func (ix *Index) Prefixes() []string {
	p := parser.New()
	seen := make(map[string]struct{})
	collect := func(key string) {
		if ref, err := p.Parse(key); err == nil {
			seen[ref.Prefix] = struct{}{}
		}
	}
	for key := range ix.Lookup {
		collect(key)
	}
	for key := range ix.Duplicates {
		collect(key)
	}
	prefixes := make([]string, 0, len(seen))
	for prefix := range seen {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

// DuplicateEntries returns the duplicates map as a sorted report.
func (ix *Index) DuplicateEntries() []types.DuplicateEntry {
	entries := make([]types.DuplicateEntry, 0, len(ix.Duplicates))
	for key, files := range ix.Duplicates {
		entries = append(entries, types.DuplicateEntry{
			Section: key,
			Files:   append([]string(nil), files...),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Section < entries[j].Section
	})
	return entries
}

// SectionCount returns the number of indexed references, duplicated ones
// included.
func (ix *Index) SectionCount() int {
	return len(ix.Lookup) + len(ix.Duplicates)
}

// Build constructs an Index over the configured files. When a previous
// index has a FileRecord with matching mtime and size for a path, its
// cached reference list is reused without re-reading the file. Files that
// fail to stat or read are skipped with a warning; one bad file never
// fails the whole build. Files dropped from configuration do not leak
// forward: the result covers exactly the given file list.
func Build(ctx context.Context, files []string, prev *Index) (*Index, error) {
	records := make([]*FileRecord, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := scanFile(path, prev)
			if err != nil {
				// Missing or unreadable files are not fatal to the index.
				slog.Warn("skipping file", "path", path, "error", err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix := &Index{
		Lookup:     make(map[string]string),
		Duplicates: make(map[string][]string),
		Files:      make(map[string]FileRecord),
		BuiltAt:    time.Now(),
	}

	// Merge per-file reference lists, in configured file order so
	// duplicate file lists are deterministic.
	byRef := make(map[string][]string)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		ix.Files[rec.Path] = *rec
		seen := make(map[string]struct{}, len(rec.Refs))
		for _, ref := range rec.Refs {
			key := ref.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			byRef[key] = append(byRef[key], rec.Path)
		}
	}

	// A reference seen in more than one file moves entirely into the
	// duplicates map, never split across both.
	for key, owners := range byRef {
		if len(owners) == 1 {
			ix.Lookup[key] = owners[0]
		} else {
			ix.Duplicates[key] = owners
		}
	}

	return ix, nil
}

// scanFile stats one file and either reuses the previous cached reference
// list (unchanged mtime and size) or reads and scans the file.
func scanFile(path string, prev *Index) (*FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if prev != nil {
		if old, ok := prev.Files[path]; ok &&
			old.ModTime.Equal(info.ModTime()) && old.SizeBytes == info.Size() {
			return &FileRecord{
				Path:      path,
				ModTime:   old.ModTime,
				SizeBytes: old.SizeBytes,
				Refs:      append([]types.Ref(nil), old.Refs...),
			}, nil
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &FileRecord{
		Path:      path,
		ModTime:   info.ModTime(),
		SizeBytes: info.Size(),
		Refs:      ScanMarkers(string(content)),
	}, nil
}

// ScanMarkers collects every section-opening marker in a document, in
// order of appearance, skipping markers inside code fences.
func ScanMarkers(text string) []types.Ref {
	p := parser.New()
	var refs []types.Ref
	var fence parser.FenceTracker
	for _, line := range strings.Split(text, "\n") {
		if fence.Step(line) {
			continue
		}
		if _, ref, ok := p.HeaderRef(line); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}
