package checker

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/sectionref-mcp/internal/parser"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// candidateRe is deliberately looser than the header grammar: anything
// that looks like a braced marker on a heading line is a candidate, so
// near-misses (missing §, junk path) are reported instead of silently
// skipped.
var candidateRe = regexp.MustCompile(`^(#+)\s*\{([^}]*)\}`)

// header is one candidate marker found outside code fences.
type header struct {
	line   int
	depth  int
	ref    types.Ref
	parsed bool
}

// Check lints a single document's section structure. It never touches
// the index; everything it reports is derivable from the file text
// alone.
func Check(text string) types.CheckResult {
	var result types.CheckResult

	headers := collectHeaders(text, &result)
	checkPrefixes(headers, &result)
	checkOrphans(headers, &result)
	checkNumbering(headers, &result)

	result.Finish()
	return result
}

// CheckFile lints the file at path.
func CheckFile(path string) (types.CheckResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.CheckResult{}, fmt.Errorf("reading %s: %w", path, err)
	}
	result := Check(string(content))
	result.FilePath = path
	return result, nil
}

// collectHeaders walks the document once, tracking fence state, and
// returns every well-formed header marker. Malformed markers and
// heading-depth violations are reported as it goes.
func collectHeaders(text string, result *types.CheckResult) []header {
	p := parser.New()
	var fence parser.FenceTracker
	fenceOpenedAt := 0
	var headers []header

	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		wasOpen := fence.Open()
		if fence.Step(line) {
			if !wasOpen && fence.Open() {
				fenceOpenedAt = lineNo
			}
			continue
		}

		m := candidateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		depth := len(m[1])
		body := m[2]

		ref, err := p.Parse(body)
		if err != nil || ref.IsWildcard() || ref.IsEnd() {
			result.Issues = append(result.Issues, types.Issue{
				Code:     types.IssueMalformedSection,
				Severity: types.SeverityError,
				Line:     lineNo,
				Message:  fmt.Sprintf("section marker %q does not match §PREFIX.N notation", body),
			})
			continue
		}

		h := header{line: lineNo, depth: depth, ref: ref, parsed: true}
		headers = append(headers, h)

		if ref.IsTopLevel() {
			if depth != 2 {
				result.Issues = append(result.Issues, types.Issue{
					Code:     types.IssueWrongHeadingLevel,
					Severity: types.SeverityError,
					Line:     lineNo,
					Message:  fmt.Sprintf("top-level section %s must use heading depth 2, found %d", ref, depth),
				})
			}
		} else if depth < 3 {
			result.Issues = append(result.Issues, types.Issue{
				Code:     types.IssueWrongHeadingLevel,
				Severity: types.SeverityError,
				Line:     lineNo,
				Message:  fmt.Sprintf("subsection %s must use heading depth 3 or deeper, found %d", ref, depth),
			})
		}
	}

	if fence.Open() {
		result.Issues = append(result.Issues, types.Issue{
			Code:     types.IssueUnclosedFence,
			Severity: types.SeverityError,
			Line:     fenceOpenedAt,
			Message:  "code fence is never closed",
		})
	}

	return headers
}

// checkPrefixes warns about markers whose prefix differs from the first
// prefix declared in the file.
func checkPrefixes(headers []header, result *types.CheckResult) {
	if len(headers) == 0 {
		return
	}
	base := headers[0].ref.Prefix
	for _, h := range headers[1:] {
		if h.ref.Prefix != base {
			result.Issues = append(result.Issues, types.Issue{
				Code:     types.IssueMixedPrefix,
				Severity: types.SeverityWarning,
				Line:     h.line,
				Message:  fmt.Sprintf("prefix %s differs from file base prefix %s", h.ref.Prefix, base),
			})
		}
	}
}

// checkOrphans reports subsections whose parent top-level section is not
// declared anywhere in the file.
func checkOrphans(headers []header, result *types.CheckResult) {
	topLevels := make(map[string]bool)
	for _, h := range headers {
		if h.ref.IsTopLevel() {
			topLevels[h.ref.String()] = true
		}
	}
	for _, h := range headers {
		if h.ref.IsTopLevel() {
			continue
		}
		parent := types.Ref{Prefix: h.ref.Prefix, Path: strings.SplitN(h.ref.Path, ".", 2)[0]}
		if !topLevels[parent.String()] {
			result.Issues = append(result.Issues, types.Issue{
				Code:     types.IssueOrphanSubsection,
				Severity: types.SeverityError,
				Line:     h.line,
				Message:  fmt.Sprintf("subsection %s has no parent section %s in this file", h.ref, parent),
			})
		}
	}
}

// numberedGroup accumulates the numbers declared for one contiguity
// scope: top-level numbers per prefix, or first-level subsection numbers
// per parent.
type numberedGroup struct {
	label   string
	line    int // first declaration line, where gaps are reported
	numbers map[int]bool
}

// checkNumbering verifies that top-level numbers per prefix, and
// first-level subsection numbers per parent, run contiguously from 1.
func checkNumbering(headers []header, result *types.CheckResult) {
	groups := make(map[string]*numberedGroup)
	var order []string

	record := func(key, label string, line, n int) {
		g, ok := groups[key]
		if !ok {
			g = &numberedGroup{label: label, line: line, numbers: make(map[int]bool)}
			groups[key] = g
			order = append(order, key)
		}
		g.numbers[n] = true
	}

	for _, h := range headers {
		nums := h.ref.PathNums()
		switch len(nums) {
		case 1:
			record("prefix:"+h.ref.Prefix,
				fmt.Sprintf("top-level sections for prefix %s", h.ref.Prefix),
				h.line, nums[0])
		case 2:
			parent := types.Ref{Prefix: h.ref.Prefix, Path: strings.SplitN(h.ref.Path, ".", 2)[0]}
			record("parent:"+parent.String(),
				fmt.Sprintf("subsections under %s", parent),
				h.line, nums[1])
		}
	}

	for _, key := range order {
		g := groups[key]
		for _, gap := range missingRanges(g.numbers) {
			result.Issues = append(result.Issues, types.Issue{
				Code:     types.IssueNumberingGap,
				Severity: types.SeverityError,
				Line:     g.line,
				Message:  fmt.Sprintf("%s skip %s", g.label, gap),
			})
		}
	}
}

// missingRanges returns the gaps in a number set that should run
// contiguously from 1, formatted as "2" or "2-3".
func missingRanges(numbers map[int]bool) []string {
	present := make([]int, 0, len(numbers))
	for n := range numbers {
		present = append(present, n)
	}
	sort.Ints(present)

	var gaps []string
	expected := 1
	for _, n := range present {
		if n > expected {
			if n-1 == expected {
				gaps = append(gaps, fmt.Sprintf("%d", expected))
			} else {
				gaps = append(gaps, fmt.Sprintf("%d-%d", expected, n-1))
			}
		}
		if n >= expected {
			expected = n + 1
		}
	}
	return gaps
}
