package parser

import (
	"regexp"
	"strings"

	"github.com/dshills/sectionref-mcp/pkg/types"
)

var (
	// scanRe finds reference tokens embedded in prose, including range
	// tails and bare-prefix wildcards.
	scanRe = regexp.MustCompile(`§[A-Z][A-Z0-9]*(?:-[A-Z][A-Z0-9]*)*(?:\.\d+(?:\.\d+)*(?:-\d+(?:\.\d+)*)?)?`)

	// headerRe matches a section-opening header line: heading marker, then
	// the reference in braces, optionally followed by title text.
	headerRe = regexp.MustCompile(`^(#+)\s*\{(§[^}]*)\}`)
)

// ScanText finds every syntactically valid reference token in text,
// skipping inline and fenced code regions. Tokens are returned in the
// order found; duplicates are preserved (dedup happens downstream). Range
// and wildcard tokens are returned unexpanded.
func (p *Parser) ScanText(text string) []string {
	var tokens []string
	var fence FenceTracker
	for _, line := range strings.Split(text, "\n") {
		if fence.Step(line) {
			continue
		}
		for _, tok := range scanRe.FindAllString(maskInlineCode(line), -1) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// maskInlineCode blanks out backtick-delimited spans so the scan regex
// cannot match inside them. Byte offsets are preserved. Text after an
// unmatched backtick is treated as code.
func maskInlineCode(line string) string {
	b := []byte(line)
	inCode := false
	for i := 0; i < len(b); i++ {
		if b[i] == '`' {
			inCode = !inCode
			b[i] = ' '
			continue
		}
		if inCode {
			b[i] = ' '
		}
	}
	return string(b)
}

// HeaderMarker examines a line for a section-opening header marker. It
// returns the heading depth (number of # characters) and the raw brace
// body including the § marker. ok is false when the line is not a header
// marker at all; the body is not grammar-checked here so the format
// checker can report malformed marker bodies.
func HeaderMarker(line string) (depth int, body string, ok bool) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), m[2], true
}

// HeaderRef is HeaderMarker plus grammar validation of the marker body.
func (p *Parser) HeaderRef(line string) (depth int, ref types.Ref, ok bool) {
	depth, body, ok := HeaderMarker(line)
	if !ok {
		return 0, types.Ref{}, false
	}
	ref, err := p.Parse(body)
	if err != nil {
		return 0, types.Ref{}, false
	}
	return depth, ref, true
}

// IsEndMarker reports whether the line is the literal end-of-content
// marker.
func IsEndMarker(line string) bool {
	return strings.TrimSpace(line) == types.EndMarkerLine
}
