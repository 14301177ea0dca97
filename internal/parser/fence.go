package parser

import "strings"

// FenceTracker is the line-stepped state machine for fenced code regions.
// States are normal and inFence(length); the transition guards encode the
// fence-matching rules:
//
//   - any run of 3+ backticks opens a fence, with or without a trailing
//     language tag
//   - only a run without a trailing tag can close a fence
//   - the closing run must be at least as long as the opener
//   - an unterminated fence extends to end of input (sections are often
//     extracted mid-file and lose their closing fence)
type FenceTracker struct {
	open     bool
	fenceLen int
}

// Step consumes one line and reports whether the line belongs to code:
// true for fence delimiter lines and for every line inside an open fence.
func (f *FenceTracker) Step(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	n := 0
	for n < len(trimmed) && trimmed[n] == '`' {
		n++
	}
	if n < 3 {
		return f.open
	}

	if !f.open {
		f.open = true
		f.fenceLen = n
		return true
	}

	rest := strings.TrimSpace(trimmed[n:])
	if rest == "" && n >= f.fenceLen {
		f.open = false
		f.fenceLen = 0
	}
	return true
}

// Open reports whether a fence is currently unterminated.
func (f *FenceTracker) Open() bool {
	return f.open
}
