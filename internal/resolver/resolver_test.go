package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sectionref-mcp/internal/indexer"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

const appDoc = `## {§APP.1}
Intro content.

## {§APP.2}
Deploys go through §OPS.1 before release.

### {§APP.2.1}
Detail under two.

## {§APP.4}
Parent body.

### {§APP.4.1}
Child body.
{§END}
`

const opsDoc = `## {§OPS.1}
Ops content referencing §APP.1 for background.
{§END}
`

// fixtureIndex builds an Index over in-memory documents the same way
// Build merges scanned files, without touching disk.
func fixtureIndex(docs map[string]string) *indexer.Index {
	ix := &indexer.Index{
		Lookup:     make(map[string]string),
		Duplicates: make(map[string][]string),
		Files:      make(map[string]indexer.FileRecord),
	}
	byRef := make(map[string][]string)
	for path, text := range docs {
		rec := indexer.FileRecord{Path: path, Refs: indexer.ScanMarkers(text)}
		ix.Files[path] = rec
		for _, ref := range rec.Refs {
			byRef[ref.String()] = append(byRef[ref.String()], path)
		}
	}
	for key, owners := range byRef {
		if len(owners) == 1 {
			ix.Lookup[key] = owners[0]
		} else {
			ix.Duplicates[key] = owners
		}
	}
	return ix
}

func fixtureResolver(docs map[string]string) *Resolver {
	return New(fixtureIndex(docs), WithFileReader(func(path string) (string, error) {
		text, ok := docs[path]
		if !ok {
			return "", fmt.Errorf("no fixture for %s", path)
		}
		return text, nil
	}))
}

func sectionKeys(sections []types.GatheredSection) []string {
	keys := make([]string, len(sections))
	for i, sec := range sections {
		keys[i] = sec.Ref.String()
	}
	return keys
}

func TestResolve_SingleSection(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	sections, err := r.Resolve([]string{"§APP.1"}, Options{})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "§APP.1", sections[0].Ref.String())
	assert.Equal(t, "/docs/app.md", sections[0].SourceFile)
	assert.Contains(t, sections[0].Content, "Intro content.")
	assert.Empty(t, sections[0].ReferredBy)
}

func TestResolve_FollowsEmbeddedReferences(t *testing.T) {
	r := fixtureResolver(map[string]string{
		"/docs/app.md": appDoc,
		"/docs/ops.md": opsDoc,
	})

	// §APP.2 mentions §OPS.1, which in turn mentions §APP.1.
	sections, err := r.Resolve([]string{"§APP.2"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"§APP.1", "§APP.2", "§OPS.1"}, sectionKeys(sections))

	provenance := make(map[string]string)
	for _, sec := range sections {
		provenance[sec.Ref.String()] = sec.ReferredBy
	}
	assert.Empty(t, provenance["§APP.2"])
	assert.Equal(t, "§APP.2", provenance["§OPS.1"])
	assert.Equal(t, "§OPS.1", provenance["§APP.1"])
}

func TestResolve_ChildEvictedByLaterParent(t *testing.T) {
	docs := map[string]string{"/docs/app.md": appDoc}

	for _, requested := range [][]string{
		{"§APP.4.1", "§APP.4"},
		{"§APP.4", "§APP.4.1"},
	} {
		r := fixtureResolver(docs)
		sections, err := r.Resolve(requested, Options{})
		require.NoError(t, err)
		require.Len(t, sections, 1, "requested %v", requested)
		assert.Equal(t, "§APP.4", sections[0].Ref.String())
		assert.Contains(t, sections[0].Content, "Child body.")
	}
}

func TestResolve_ParentSuppressesScannedChild(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	// §APP.4's own content contains the §APP.4.1 header marker; the
	// scanned child must not reappear as a separate section.
	sections, err := r.Resolve([]string{"§APP.4"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"§APP.4"}, sectionKeys(sections))
}

func TestResolve_WildcardExpandsPrefix(t *testing.T) {
	r := fixtureResolver(map[string]string{
		"/docs/app.md": appDoc,
		"/docs/ops.md": opsDoc,
	})

	sections, err := r.Resolve([]string{"§APP"}, Options{})
	require.NoError(t, err)
	// Subsections collapse into their parents; §OPS.1 rides in through
	// the §APP.2 mention.
	assert.Equal(t, []string{"§APP.1", "§APP.2", "§APP.4", "§OPS.1"}, sectionKeys(sections))
}

func TestResolve_UnknownWildcardPrefix(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	_, err := r.Resolve([]string{"§NOPE"}, Options{Lenient: true})
	require.Error(t, err)
	var perr *types.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.ValidPrefixes, "APP")
}

func TestResolve_NotFoundStrict(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	_, err := r.Resolve([]string{"§APP.9"}, Options{})
	require.Error(t, err)
	var nfe *types.NotFoundError
	assert.ErrorAs(t, err, &nfe)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResolve_NotFoundLenient(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	var warned []string
	sections, err := r.Resolve([]string{"§APP.1", "§APP.9"}, Options{
		Lenient: true,
		Warn:    func(ref string, err error) { warned = append(warned, ref) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"§APP.1"}, sectionKeys(sections))
	assert.Equal(t, []string{"§APP.9"}, warned)
}

func TestResolve_DuplicateReference(t *testing.T) {
	docs := map[string]string{
		"/docs/a.md": "## {§DUP.1}\nFrom a.\n{§END}\n",
		"/docs/b.md": "## {§DUP.1}\nFrom b.\n{§END}\n",
	}

	r := fixtureResolver(docs)
	_, err := r.Resolve([]string{"§DUP.1"}, Options{})
	var dup *types.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Len(t, dup.Files, 2)

	var warned []string
	sections, err := r.Resolve([]string{"§DUP.1"}, Options{
		Lenient: true,
		Warn:    func(ref string, err error) { warned = append(warned, ref) },
	})
	require.NoError(t, err)
	assert.Empty(t, sections)
	assert.Equal(t, []string{"§DUP.1"}, warned)
}

func TestResolve_CycleTerminates(t *testing.T) {
	r := fixtureResolver(map[string]string{
		"/docs/loop.md": "## {§LOOP.1}\nSee §LOOP.2.\n\n## {§LOOP.2}\nBack to §LOOP.1.\n{§END}\n",
	})

	sections, err := r.Resolve([]string{"§LOOP.1"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"§LOOP.1", "§LOOP.2"}, sectionKeys(sections))
}

func TestResolve_RangeSeeds(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	// §OPS.1 is mentioned but not indexed here; strict mode aborts,
	// lenient keeps going.
	_, err := r.Resolve([]string{"§APP.1-2"}, Options{})
	assert.ErrorIs(t, err, types.ErrNotFound)

	var warned []string
	sections, err := r.Resolve([]string{"§APP.1-2"}, Options{
		Lenient: true,
		Warn:    func(ref string, err error) { warned = append(warned, ref) },
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"§APP.1", "§APP.2"}, sectionKeys(sections))
	assert.Equal(t, []string{"§OPS.1"}, warned)
}

func TestResolve_ReadsEachFileOnce(t *testing.T) {
	docs := map[string]string{
		"/docs/app.md": appDoc,
		"/docs/ops.md": opsDoc,
	}
	reads := make(map[string]int)
	r := New(fixtureIndex(docs), WithFileReader(func(path string) (string, error) {
		reads[path]++
		return docs[path], nil
	}))

	// §APP.2 and §APP.1 both live in app.md; the second extraction must
	// hit the memoized text.
	_, err := r.Resolve([]string{"§APP.2"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, reads["/docs/app.md"])
	assert.Equal(t, 1, reads["/docs/ops.md"])
}

func TestResolve_SeedParseErrorAlwaysFatal(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	_, err := r.Resolve([]string{"not-a-reference"}, Options{Lenient: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)
}

func TestCombined(t *testing.T) {
	sections := []types.GatheredSection{
		{Ref: types.Ref{Prefix: "APP", Path: "1"}, Content: "First body.\n\n"},
		{Ref: types.Ref{Prefix: "APP", Path: "2"}, Content: "Second body.\n"},
	}
	assert.Equal(t, "First body.\n\nSecond body.", Combined(sections))
}

func TestGroupByFile(t *testing.T) {
	sections := []types.GatheredSection{
		{Ref: types.Ref{Prefix: "OPS", Path: "1"}, SourceFile: "/docs/ops.md"},
		{Ref: types.Ref{Prefix: "APP", Path: "10"}, SourceFile: "/docs/app.md"},
		{Ref: types.Ref{Prefix: "APP", Path: "2"}, SourceFile: "/docs/app.md"},
	}
	grouped := GroupByFile(sections)
	require.Len(t, grouped, 2)
	assert.Equal(t, []string{"§APP.2", "§APP.10"}, grouped["/docs/app.md"])
	assert.Equal(t, []string{"§OPS.1"}, grouped["/docs/ops.md"])
}

func TestResolve_EmptyRequest(t *testing.T) {
	r := fixtureResolver(map[string]string{"/docs/app.md": appDoc})

	sections, err := r.Resolve(nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, sections)

	_, err = r.Resolve([]string{""}, Options{})
	assert.ErrorIs(t, err, types.ErrParse)
}
