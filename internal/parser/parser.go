package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/sectionref-mcp/pkg/types"
)

var (
	prefixRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*(?:-[A-Z][A-Z0-9]*)*$`)
	pathRe   = regexp.MustCompile(`^\d+(?:\.\d+)*$`)
	// rangeTailRe matches the numeric tail of a range form: A-B where both
	// sides are dotted digit paths.
	rangeTailRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)-(\d+(?:\.\d+)*)$`)
)

// Parser parses and expands section reference notation.
type Parser struct{}

// New creates a new Parser instance.
func New() *Parser {
	return &Parser{}
}

// Parse parses a candidate reference string into a Ref. The input must
// carry the leading § marker, a valid prefix, and an optional dot-separated
// numeric path.
func (p *Parser) Parse(s string) (types.Ref, error) {
	raw := strings.TrimSpace(s)
	if !strings.HasPrefix(raw, types.Marker) {
		return types.Ref{}, &types.ParseError{Input: s, Reason: "missing " + types.Marker + " marker"}
	}
	body := strings.TrimPrefix(raw, types.Marker)
	if body == "" {
		return types.Ref{}, &types.ParseError{Input: s, Reason: "empty reference"}
	}

	prefix, path := body, ""
	if i := strings.IndexByte(body, '.'); i >= 0 {
		prefix, path = body[:i], body[i+1:]
	}

	if !prefixRe.MatchString(prefix) {
		return types.Ref{}, &types.ParseError{Input: s, Reason: fmt.Sprintf("invalid prefix %q", prefix)}
	}
	if path != "" && !pathRe.MatchString(path) {
		return types.Ref{}, &types.ParseError{Input: s, Reason: fmt.Sprintf("invalid numeric path %q", path)}
	}
	if path == "" && strings.HasSuffix(body, ".") {
		return types.Ref{}, &types.ParseError{Input: s, Reason: "empty numeric path"}
	}

	return types.Ref{Prefix: prefix, Path: path}, nil
}

// ParseKnown parses s and additionally requires its prefix to be one of
// the prefixes known to the configured file map. The returned error names
// the valid prefixes.
func (p *Parser) ParseKnown(s string, prefixes []string) (types.Ref, error) {
	ref, err := p.Parse(s)
	if err != nil {
		return types.Ref{}, err
	}
	for _, known := range prefixes {
		if ref.Prefix == known {
			return ref, nil
		}
	}
	valid := append([]string(nil), prefixes...)
	sort.Strings(valid)
	return types.Ref{}, &types.ParseError{
		Input:         s,
		Reason:        fmt.Sprintf("unknown prefix %q", ref.Prefix),
		ValidPrefixes: valid,
	}
}

// ExpandRange expands a range reference into its sibling references. Three
// surface forms are accepted:
//
//	§PREFIX.N.A-B    abbreviated, same major
//	§PREFIX.N.A-N.B  explicit, major repeated
//	§PREFIX.A-B      top-level range
//
// A non-range input is returned as a one-element list. A backwards range
// (start > end) expands to an empty list with no error. Malformed ranges
// (mixed depth, mismatched parents) are not ranges and fall through to
// single-reference parsing.
func (p *Parser) ExpandRange(s string) ([]types.Ref, error) {
	raw := strings.TrimSpace(s)
	body := strings.TrimPrefix(raw, types.Marker)

	prefix, tail := body, ""
	if i := strings.IndexByte(body, '.'); i >= 0 {
		prefix, tail = body[:i], body[i+1:]
	}

	if !strings.HasPrefix(raw, types.Marker) || !prefixRe.MatchString(prefix) {
		return p.expandSingle(s)
	}

	m := rangeTailRe.FindStringSubmatch(tail)
	if m == nil {
		return p.expandSingle(s)
	}

	lo := strings.Split(m[1], ".")
	hi := strings.Split(m[2], ".")

	var parent []string
	switch {
	case len(hi) == 1:
		// Abbreviated (or top-level) form: the right side names only the
		// final component.
		parent = lo[:len(lo)-1]
	case len(hi) == len(lo) && strings.Join(lo[:len(lo)-1], ".") == strings.Join(hi[:len(hi)-1], "."):
		// Explicit form with the parent repeated on both sides.
		parent = lo[:len(lo)-1]
	default:
		// Mixed depth or mismatched parents: not a range.
		return p.expandSingle(s)
	}

	from, err1 := strconv.Atoi(lo[len(lo)-1])
	to, err2 := strconv.Atoi(hi[len(hi)-1])
	if err1 != nil || err2 != nil {
		return p.expandSingle(s)
	}

	// Backwards ranges resolve to an empty result with no error raised.
	// Callers depend on the silent-empty semantics.
	if from > to {
		return []types.Ref{}, nil
	}

	refs := make([]types.Ref, 0, to-from+1)
	for n := from; n <= to; n++ {
		path := strconv.Itoa(n)
		if len(parent) > 0 {
			path = strings.Join(parent, ".") + "." + path
		}
		refs = append(refs, types.Ref{Prefix: prefix, Path: path})
	}
	return refs, nil
}

func (p *Parser) expandSingle(s string) ([]types.Ref, error) {
	ref, err := p.Parse(s)
	if err != nil {
		return nil, err
	}
	return []types.Ref{ref}, nil
}

// ExpandWildcard expands a bare-prefix reference against the full set of
// indexed references, returning every concrete reference under the prefix
// in sorted order. The reserved end-of-content marker is never part of the
// expansion. A non-wildcard input expands to itself.
func ExpandWildcard(ref types.Ref, all []types.Ref) []types.Ref {
	if !ref.IsWildcard() {
		return []types.Ref{ref}
	}
	var out []types.Ref
	for _, cand := range all {
		if cand.Prefix != ref.Prefix || cand.IsWildcard() || cand.IsEnd() {
			continue
		}
		out = append(out, cand)
	}
	types.SortRefs(out)
	return out
}
