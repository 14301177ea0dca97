package types

import "sort"

// IssueCode identifies a class of structural problem found by the format
// checker.
type IssueCode string

const (
	IssueMalformedSection  IssueCode = "MALFORMED_SECTION"
	IssueWrongHeadingLevel IssueCode = "WRONG_HEADING_LEVEL"
	IssueOrphanSubsection  IssueCode = "ORPHAN_SUBSECTION"
	IssueNumberingGap      IssueCode = "NUMBERING_GAP"
	IssueMixedPrefix       IssueCode = "MIXED_PREFIX"
	IssueUnclosedFence     IssueCode = "UNCLOSED_FENCE"
)

// IssueSeverity distinguishes errors (format violations) from warnings
// (suspicious but tolerated constructs).
type IssueSeverity int

const (
	SeverityError IssueSeverity = iota
	SeverityWarning
)

func (s IssueSeverity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	default:
		return "UNKNOWN"
	}
}

// Issue is a single finding of the format checker.
type Issue struct {
	Code     IssueCode     `json:"code"`
	Severity IssueSeverity `json:"severity"`
	Line     int           `json:"line"` // 1-based, 0 when file-wide
	Message  string        `json:"message"`
}

// CheckResult aggregates the findings for one file.
type CheckResult struct {
	FilePath string  `json:"file"`
	Valid    bool    `json:"valid"` // no errors; warnings do not affect validity
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Issues   []Issue `json:"issues"` // all findings, sorted by line
}

// Finish derives the aggregate fields from the collected issues. Issues
// are sorted by line, ties broken by code for determinism.
func (r *CheckResult) Finish() {
	sort.SliceStable(r.Issues, func(i, j int) bool {
		if r.Issues[i].Line != r.Issues[j].Line {
			return r.Issues[i].Line < r.Issues[j].Line
		}
		return r.Issues[i].Code < r.Issues[j].Code
	})
	r.Errors = r.Errors[:0]
	r.Warnings = r.Warnings[:0]
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			r.Errors = append(r.Errors, is)
		} else {
			r.Warnings = append(r.Warnings, is)
		}
	}
	r.Valid = len(r.Errors) == 0
}

// DuplicateEntry reports one reference defined in more than one file.
type DuplicateEntry struct {
	Section string   `json:"section"`
	Files   []string `json:"files"`
}
