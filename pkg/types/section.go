package types

import "errors"

// GatheredSection is one resolved reference's extracted content plus its
// source file, prior to sorting and chunking.
type GatheredSection struct {
	Ref        Ref
	SourceFile string
	Content    string

	// ReferredBy is the reference whose content pulled this one in, or
	// empty for a section the caller requested directly.
	ReferredBy string
}

// Chunk is one size-bounded piece of a resolution result.
type Chunk struct {
	Content string
	Index   int // 0-based position within the chunk sequence
	Total   int

	// HasMore is true for every chunk except the last; Continuation then
	// holds the token ("chunk:<n>") that retrieves the next piece.
	HasMore      bool
	Continuation string
}

// Validate checks internal consistency of a chunk.
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return errors.New("chunk content cannot be empty")
	}
	if c.Index < 0 || c.Total <= 0 || c.Index >= c.Total {
		return errors.New("chunk index out of range")
	}
	if c.HasMore && c.Continuation == "" {
		return errors.New("non-final chunk must carry a continuation token")
	}
	if !c.HasMore && c.Continuation != "" {
		return errors.New("final chunk must not carry a continuation token")
	}
	return nil
}
