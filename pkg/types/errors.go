package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the error kinds callers branch on with errors.Is.
var (
	// ErrParse marks malformed reference syntax or an unknown prefix.
	ErrParse = errors.New("reference parse error")
	// ErrNotFound marks a reference absent from the index.
	ErrNotFound = errors.New("reference not found")
	// ErrDuplicate marks a reference defined in more than one file.
	ErrDuplicate = errors.New("reference defined in multiple files")
	// ErrChunking marks an invalid continuation token.
	ErrChunking = errors.New("invalid chunk request")
	// ErrEmptySection marks the invariant violation where the index
	// locates a reference but extraction yields no content.
	ErrEmptySection = errors.New("indexed section extracted no content")
)

// ParseError reports malformed reference syntax.
type ParseError struct {
	Input  string
	Reason string

	// ValidPrefixes is populated when the failure is an unknown prefix
	// checked against a known file map.
	ValidPrefixes []string
}

func (e *ParseError) Error() string {
	if len(e.ValidPrefixes) > 0 {
		return fmt.Sprintf("invalid reference %q: %s (valid prefixes: %s)",
			e.Input, e.Reason, strings.Join(e.ValidPrefixes, ", "))
	}
	return fmt.Sprintf("invalid reference %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NotFoundError reports a reference missing from both index maps.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reference %s not found in index", e.Ref)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateError reports a reference defined in two or more files. Files
// lists every contributing file.
type DuplicateError struct {
	Ref   string
	Files []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("reference %s is defined in %d files: %s",
		e.Ref, len(e.Files), strings.Join(e.Files, ", "))
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// ChunkingError reports a continuation token naming a chunk beyond the
// available count.
type ChunkingError struct {
	Requested int
	Available int
}

func (e *ChunkingError) Error() string {
	return fmt.Sprintf("chunk %d requested but only %d chunks exist",
		e.Requested, e.Available)
}

func (e *ChunkingError) Unwrap() error { return ErrChunking }
