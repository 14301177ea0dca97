package types

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// Marker is the leading character of every section reference.
	Marker = "§"

	// EndPrefix is the reserved prefix of the end-of-content marker.
	EndPrefix = "END"

	// EndMarkerLine is the literal line that terminates a document's
	// addressable content.
	EndMarkerLine = "{§END}"
)

// Ref is a parsed section reference such as §APP.4.1. A Ref with an empty
// Path is a wildcard addressing every section under its prefix.
type Ref struct {
	Prefix string
	Path   string // dot-separated non-negative integers, "" for a wildcard

	// SourceFile is filled in once the reference has been resolved
	// against an index; empty otherwise.
	SourceFile string
}

// String returns the canonical string form, e.g. "§APP.4.1" or "§APP".
func (r Ref) String() string {
	if r.Path == "" {
		return Marker + r.Prefix
	}
	return Marker + r.Prefix + "." + r.Path
}

// IsWildcard reports whether the reference is a bare prefix.
func (r Ref) IsWildcard() bool {
	return r.Path == ""
}

// IsTopLevel reports whether the reference addresses a top-level section
// (a single-component numeric path).
func (r Ref) IsTopLevel() bool {
	return r.Path != "" && !strings.Contains(r.Path, ".")
}

// IsEnd reports whether this is the reserved end-of-content marker.
func (r Ref) IsEnd() bool {
	return r.Prefix == EndPrefix
}

// PathNums returns the numeric path components. A wildcard has none.
func (r Ref) PathNums() []int {
	if r.Path == "" {
		return nil
	}
	parts := strings.Split(r.Path, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			// Paths are validated at parse time; treat residue as 0.
			n = 0
		}
		nums[i] = n
	}
	return nums
}

// Compare orders references by prefix (ordinal) and then by numeric path,
// component-wise. A missing trailing component compares as 0, so a parent
// sorts immediately before its first child.
func (r Ref) Compare(o Ref) int {
	if c := strings.Compare(r.Prefix, o.Prefix); c != 0 {
		return c
	}
	a, b := r.PathNums(), o.PathNums()
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// IsParentOf reports whether r is a strict ancestor of o: same prefix, and
// o's string form starts with r's string form plus a path separator. A
// wildcard is therefore a parent of every concrete reference under its
// prefix, and no reference is its own parent.
func (r Ref) IsParentOf(o Ref) bool {
	if r.Prefix != o.Prefix {
		return false
	}
	return strings.HasPrefix(o.String(), r.String()+".")
}

// SortRefs sorts references in place using Compare ordering.
func SortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Compare(refs[j]) < 0
	})
}
