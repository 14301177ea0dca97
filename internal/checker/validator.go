package checker

import (
	"github.com/dshills/sectionref-mcp/internal/indexer"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// Report is the index-wide duplicate report.
type Report struct {
	Valid      bool                   `json:"valid"`
	Duplicates []types.DuplicateEntry `json:"duplicates"`
}

// Validate reports every reference defined in more than one indexed
// file. The index is valid when no reference is duplicated.
func Validate(ix *indexer.Index) Report {
	dups := ix.DuplicateEntries()
	return Report{Valid: len(dups) == 0, Duplicates: dups}
}

// ValidateFile restricts the duplicate report to entries involving the
// given file. A file is valid when none of its references are also
// defined elsewhere.
func ValidateFile(ix *indexer.Index, path string) Report {
	var dups []types.DuplicateEntry
	for _, entry := range ix.DuplicateEntries() {
		for _, f := range entry.Files {
			if f == path {
				dups = append(dups, entry)
				break
			}
		}
	}
	return Report{Valid: len(dups) == 0, Duplicates: dups}
}
