package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/sectionref-mcp/internal/parser"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

const (
	// DefaultMaxTokens is the chunk budget used when the caller does not
	// supply one.
	DefaultMaxTokens = 2000

	// TokensPerChar is the heuristic for estimating tokens (chars/4).
	// Exactness is not required, only monotonicity and determinism.
	TokensPerChar = 4

	// ContinuationPrefix is the literal prefix of continuation tokens.
	ContinuationPrefix = "chunk:"
)

// EstimateTokens estimates the number of tokens in a string.
func EstimateTokens(text string) int {
	return len(text) / TokensPerChar
}

// Chunker splits combined resolution output into size-bounded pieces at
// section-header boundaries. Chunking is deterministic for the same input
// and budget, so a continuation token stays valid when redeemed against a
// re-derived identical resolution.
type Chunker struct {
	maxTokens int
}

// New creates a Chunker with the given token budget; a non-positive
// budget falls back to DefaultMaxTokens.
func New(maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Chunker{maxTokens: maxTokens}
}

// Split chunks content. Content within budget comes back as a single
// chunk with no continuation. Otherwise content is split at
// section-header boundaries only, never mid-section; a single oversized
// section still becomes one chunk.
func (c *Chunker) Split(content string) []types.Chunk {
	if EstimateTokens(content) <= c.maxTokens {
		return finish([]string{content})
	}

	segments := splitSections(content)

	var pieces []string
	var cur strings.Builder
	for _, seg := range segments {
		if cur.Len() > 0 && EstimateTokens(cur.String())+EstimateTokens(seg) > c.maxTokens {
			pieces = append(pieces, cur.String())
			cur.Reset()
		}
		cur.WriteString(seg)
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}

	return finish(pieces)
}

// Chunk redeems a 0-based chunk index against content. Requesting an
// index beyond the available count is a ChunkingError naming both
// numbers.
func (c *Chunker) Chunk(content string, index int) (types.Chunk, error) {
	chunks := c.Split(content)
	if index < 0 || index >= len(chunks) {
		return types.Chunk{}, &types.ChunkingError{Requested: index, Available: len(chunks)}
	}
	return chunks[index], nil
}

// ParseContinuation parses a "chunk:<integer>" continuation token into
// the chunk index it names.
func ParseContinuation(token string) (int, error) {
	rest, ok := strings.CutPrefix(token, ContinuationPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: malformed continuation token %q", types.ErrChunking, token)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: malformed continuation token %q", types.ErrChunking, token)
	}
	return n, nil
}

// splitSections cuts content into segments, each starting at a
// section-header line. Any preamble before the first header belongs to
// the first segment. Header-looking lines inside code fences do not cut.
func splitSections(content string) []string {
	lines := strings.Split(content, "\n")

	var segments []string
	var cur strings.Builder
	var fence parser.FenceTracker
	for i, line := range lines {
		inCode := fence.Step(line)
		if !inCode {
			if _, _, ok := parser.HeaderMarker(line); ok && cur.Len() > 0 {
				segments = append(segments, cur.String())
				cur.Reset()
			}
		}
		cur.WriteString(line)
		if i < len(lines)-1 {
			cur.WriteByte('\n')
		}
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// finish assigns chunk indexes and continuation tokens. Chunk i's token
// names the next chunk, 1-based from the sequence start.
func finish(pieces []string) []types.Chunk {
	chunks := make([]types.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = types.Chunk{
			Content: piece,
			Index:   i,
			Total:   len(pieces),
		}
		if i < len(pieces)-1 {
			chunks[i].HasMore = true
			chunks[i].Continuation = ContinuationPrefix + strconv.Itoa(i+1)
		}
	}
	return chunks
}
