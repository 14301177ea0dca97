// Package extractor returns the exact substring of a document belonging
// to one section, applying the boundary-stop rules that differ for
// top-level and nested sections.
package extractor

import (
	"strings"

	"github.com/dshills/sectionref-mcp/internal/parser"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// Extract returns the lines of the section addressed by ref, header line
// included, joined with newlines. It returns the empty string when no
// opening marker for ref exists in text.
//
// A top-level section runs until the next top-level heading of the same
// prefix, the end-of-content marker, or end of file; headings of other
// prefixes do not stop it. A subsection runs until any next
// section-opening marker. Stop markers inside an open code fence are
// ignored, so extracted content keeps fenced examples intact.
func Extract(text string, ref types.Ref) string {
	p := parser.New()
	lines := strings.Split(text, "\n")

	start := findStart(p, lines, ref)
	if start < 0 {
		return ""
	}

	var fence parser.FenceTracker
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if fence.Step(line) {
			continue
		}
		if parser.IsEndMarker(line) {
			end = i
			break
		}
		depth, cand, ok := p.HeaderRef(line)
		if !ok {
			continue
		}
		if stopsAt(ref, depth, cand) {
			end = i
			break
		}
	}

	return strings.Join(lines[start:end], "\n")
}

// findStart locates the section-opening marker for ref, skipping anything
// inside a code fence.
func findStart(p *parser.Parser, lines []string, ref types.Ref) int {
	var fence parser.FenceTracker
	for i, line := range lines {
		if fence.Step(line) {
			continue
		}
		_, cand, ok := p.HeaderRef(line)
		if !ok {
			continue
		}
		if cand.Prefix == ref.Prefix && cand.Path == ref.Path {
			return i
		}
	}
	return -1
}

// stopsAt decides whether a later section-opening marker terminates the
// extraction of ref.
func stopsAt(ref types.Ref, depth int, cand types.Ref) bool {
	if ref.IsTopLevel() {
		// Only a sibling top-level heading of the same prefix stops a
		// top-level section; its own subsections and other prefixes'
		// headings are content or pass-through.
		return depth == 2 && cand.Prefix == ref.Prefix && cand.IsTopLevel()
	}
	// Subsections stop at any next section marker.
	return true
}
