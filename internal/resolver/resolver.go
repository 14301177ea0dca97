package resolver

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dshills/sectionref-mcp/internal/extractor"
	"github.com/dshills/sectionref-mcp/internal/indexer"
	"github.com/dshills/sectionref-mcp/internal/parser"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// WarnFunc receives resolution failures in lenient mode instead of them
// aborting the whole resolution.
type WarnFunc func(ref string, err error)

// Options controls how a resolution handles failures.
type Options struct {
	// Lenient downgrades not-found, duplicate, and extraction failures to
	// warnings; the failing reference is dropped from the result. Parse
	// errors on the requested references are always surfaced.
	Lenient bool
	Warn    WarnFunc
}

// FileReader supplies file content to the resolver. The default reads
// from disk; tests inject fixtures.
type FileReader func(path string) (string, error)

// Resolver walks the reference graph reachable from a requested set:
// extract content, scan it for embedded references, repeat until
// exhausted. It operates over one immutable Index snapshot and memoizes
// file reads, so each file is read at most once per resolution.
type Resolver struct {
	index  *indexer.Index
	parser *parser.Parser
	read   FileReader
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFileReader replaces the on-disk file reader.
func WithFileReader(r FileReader) Option {
	return func(res *Resolver) { res.read = r }
}

// New creates a Resolver over a built index snapshot.
func New(ix *indexer.Index, opts ...Option) *Resolver {
	r := &Resolver{
		index:  ix,
		parser: parser.New(),
		read: func(path string) (string, error) {
			content, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(content), nil
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// workItem is one queued reference with its provenance: the reference
// whose content pulled it in, empty for caller-requested seeds.
type workItem struct {
	ref        types.Ref
	referredBy string
}

// Resolve gathers the section content for the requested references and
// everything they transitively mention. Requested strings may be ranges
// or wildcards; they are expanded before seeding.
//
// Two precedence rules shape the result. Parent suppression: a reference
// is skipped when an already-gathered reference is its ancestor, because
// the ancestor's extraction subsumes it. Child eviction: a gathered
// reference is removed when one of its ancestors arrives later,
// regardless of order.
func (r *Resolver) Resolve(requested []string, opts Options) ([]types.GatheredSection, error) {
	warn := opts.Warn
	if warn == nil {
		warn = func(string, error) {}
	}

	var queue []workItem
	queued := make(map[string]bool)

	enqueue := func(ref types.Ref, referredBy string) {
		key := ref.String()
		if queued[key] {
			return
		}
		queued[key] = true
		queue = append(queue, workItem{ref: ref, referredBy: referredBy})
	}

	// Seed the queue. Parse errors on seeds are surfaced even in lenient
	// mode; they are caller mistakes, not document drift.
	for _, raw := range requested {
		refs, err := r.parser.ExpandRange(raw)
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			concrete := r.expandWildcard(ref)
			if ref.IsWildcard() && len(concrete) == 0 {
				// An empty wildcard over an unknown prefix is a caller
				// mistake; name the valid prefixes.
				if _, err := r.parser.ParseKnown(ref.String(), r.index.Prefixes()); err != nil {
					return nil, err
				}
			}
			for _, c := range concrete {
				enqueue(c, "")
			}
		}
	}

	processed := make(map[string]types.Ref)
	gathered := make(map[string]types.GatheredSection)
	contents := make(map[string]string) // file path -> text, one read per file

	fail := func(key string, err error) error {
		if opts.Lenient {
			warn(key, err)
			return nil
		}
		return err
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		key := item.ref.String()
		delete(queued, key)

		if _, done := processed[key]; done {
			continue
		}

		// Parent suppression: an already-processed ancestor's extraction
		// subsumes this content.
		if suppressed := anyParentOf(processed, item.ref); suppressed {
			continue
		}

		// Child eviction: this reference supersedes any of its own
		// descendants gathered earlier.
		for doneKey, doneRef := range processed {
			if item.ref.IsParentOf(doneRef) {
				delete(processed, doneKey)
				delete(gathered, doneKey)
			}
		}

		processed[key] = item.ref

		path, err := r.index.Resolve(item.ref)
		if err != nil {
			if ferr := fail(key, err); ferr != nil {
				return nil, ferr
			}
			continue
		}

		text, ok := contents[path]
		if !ok {
			text, err = r.read(path)
			if err != nil {
				if ferr := fail(key, fmt.Errorf("reading %s: %w", path, err)); ferr != nil {
					return nil, ferr
				}
				continue
			}
			contents[path] = text
		}

		content := extractor.Extract(text, item.ref)
		if content == "" {
			// The index and the extractor must agree; an empty extraction
			// for an indexed reference means they do not.
			err := fmt.Errorf("%w: %s in %s", types.ErrEmptySection, key, path)
			if ferr := fail(key, err); ferr != nil {
				return nil, ferr
			}
			continue
		}

		resolved := item.ref
		resolved.SourceFile = path
		gathered[key] = types.GatheredSection{
			Ref:        resolved,
			SourceFile: path,
			Content:    content,
			ReferredBy: item.referredBy,
		}

		// Follow embedded references.
		for _, token := range r.parser.ScanText(content) {
			refs, err := r.parser.ExpandRange(token)
			if err != nil {
				// Scanned tokens are grammar-valid by construction; a
				// residual failure is not worth aborting a resolution.
				warn(token, err)
				continue
			}
			for _, ref := range refs {
				for _, concrete := range r.expandWildcard(ref) {
					if _, done := processed[concrete.String()]; done {
						continue
					}
					enqueue(concrete, key)
				}
			}
		}
	}

	sections := make([]types.GatheredSection, 0, len(gathered))
	for _, sec := range gathered {
		sections = append(sections, sec)
	}
	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Ref.Compare(sections[j].Ref) < 0
	})
	return sections, nil
}

// expandWildcard expands a bare-prefix reference over the index; concrete
// references pass through untouched.
func (r *Resolver) expandWildcard(ref types.Ref) []types.Ref {
	if !ref.IsWildcard() {
		return []types.Ref{ref}
	}
	return parser.ExpandWildcard(ref, r.index.Refs())
}

func anyParentOf(processed map[string]types.Ref, ref types.Ref) bool {
	for _, done := range processed {
		if done.IsParentOf(ref) {
			return true
		}
	}
	return false
}

// Combined concatenates the gathered sections' content in reference
// order.
func Combined(sections []types.GatheredSection) string {
	parts := make([]string, len(sections))
	for i, sec := range sections {
		parts[i] = strings.TrimRight(sec.Content, "\n")
	}
	return strings.Join(parts, "\n\n")
}

// GroupByFile groups the gathered references by their source file, each
// file's list independently sorted. It answers "where do these
// references live" without re-fetching content.
func GroupByFile(sections []types.GatheredSection) map[string][]string {
	grouped := make(map[string][]types.Ref)
	for _, sec := range sections {
		grouped[sec.SourceFile] = append(grouped[sec.SourceFile], sec.Ref)
	}
	out := make(map[string][]string, len(grouped))
	for path, refs := range grouped {
		types.SortRefs(refs)
		keys := make([]string, len(refs))
		for i, ref := range refs {
			keys[i] = ref.String()
		}
		out[path] = keys
	}
	return out
}
