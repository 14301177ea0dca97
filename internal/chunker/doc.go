// Package chunker splits combined section content into size-bounded
// pieces for multi-part retrieval.
//
// # Chunking Strategy
//
// Content is split only at section-header boundaries, never mid-section.
// Sections accumulate into a running chunk; when the next section would
// exceed the token budget the chunk is closed and flagged "has more" with
// a continuation token naming the next chunk:
//
//	c := chunker.New(2000)
//	chunks := c.Split(combined)
//	// chunks[0].Continuation == "chunk:1" when more follow
//
// A continuation token is redeemed by re-deriving the identical
// resolution and asking for the named index:
//
//	next, _ := chunker.ParseContinuation("chunk:1")
//	chunk, err := c.Chunk(combined, next)
//
// Chunking is deterministic for the same input and budget; that property
// is what keeps an issued token valid across requests.
//
// Token estimation uses a simple heuristic (chars/4). Only monotonicity
// and determinism matter here, not exactness.
package chunker
