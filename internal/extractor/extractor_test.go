package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sectionref-mcp/pkg/types"
)

const doc = `# Policy handbook

## {§APP.1} Scope

Scope prose.

## {§APP.2} Rules

Rule prose.

### {§APP.2.1} Exceptions

Exception prose.

### {§APP.2.2} Appeals

Appeal prose.

## {§OPS.1} Operations

Ops prose.

## {§APP.3} Closing

Closing prose.

{§END}

Trailing notes that are not addressable.
`

func extract(t *testing.T, text, refStr string) string {
	t.Helper()
	parts := strings.SplitN(strings.TrimPrefix(refStr, "§"), ".", 2)
	ref := types.Ref{Prefix: parts[0]}
	if len(parts) == 2 {
		ref.Path = parts[1]
	}
	return Extract(text, ref)
}

func TestExtract_TopLevelIncludesSubsections(t *testing.T) {
	got := extract(t, doc, "§APP.2")

	assert.True(t, strings.HasPrefix(got, "## {§APP.2} Rules"))
	assert.Contains(t, got, "{§APP.2.1}")
	assert.Contains(t, got, "Appeal prose.")
	assert.NotContains(t, got, "{§OPS.1}")
}

func TestExtract_TopLevelNotStoppedBySiblingPrefix(t *testing.T) {
	// §OPS.1 is followed by §APP.3; an OPS section is only bounded by the
	// next OPS top-level heading, so here it runs to... §APP.3 does not
	// stop it, the end marker does.
	got := extract(t, doc, "§OPS.1")

	assert.True(t, strings.HasPrefix(got, "## {§OPS.1}"))
	assert.Contains(t, got, "## {§APP.3} Closing")
	assert.NotContains(t, got, "{§END}")
	assert.NotContains(t, got, "Trailing notes")
}

func TestExtract_SubsectionStopsAtAnyMarker(t *testing.T) {
	got := extract(t, doc, "§APP.2.1")

	assert.True(t, strings.HasPrefix(got, "### {§APP.2.1} Exceptions"))
	assert.Contains(t, got, "Exception prose.")
	assert.NotContains(t, got, "{§APP.2.2}")
}

func TestExtract_StopsAtEndMarker(t *testing.T) {
	got := extract(t, doc, "§APP.3")

	assert.Contains(t, got, "Closing prose.")
	assert.NotContains(t, got, "{§END}")
}

func TestExtract_NotFoundIsEmpty(t *testing.T) {
	assert.Empty(t, extract(t, doc, "§APP.9"))
	assert.Empty(t, extract(t, doc, "§SEC.1"))
}

func TestExtract_EndMarkerInsideFenceIsContent(t *testing.T) {
	text := "## {§APP.1} Fenced\n" +
		"before\n" +
		"```\n" +
		"{§END}\n" +
		"## {§APP.2} fake heading\n" +
		"```\n" +
		"after\n" +
		"## {§APP.2} Real\n" +
		"real content\n"

	got := extract(t, text, "§APP.1")
	require.NotEmpty(t, got)

	assert.Contains(t, got, "{§END}")
	assert.Contains(t, got, "after")
	assert.NotContains(t, got, "real content")
}

func TestExtract_HeaderInsideFenceIsNotAStart(t *testing.T) {
	text := "intro\n```\n## {§APP.1} example\n```\nno real section here\n"
	assert.Empty(t, extract(t, text, "§APP.1"))
}

func TestExtract_RunsToEOFWithoutEndMarker(t *testing.T) {
	text := "## {§APP.1} Only\nbody line\nlast line"
	got := extract(t, text, "§APP.1")
	assert.Equal(t, text, got)
}
