package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/sectionref-mcp/internal/config"
)

const appFixture = `## {§APP.1}
Application intro.

## {§APP.2}
Deployment details, see §OPS.1.
{§END}
`

const opsFixture = `## {§OPS.1}
Operations content.
{§END}
`

func newTestServer(t *testing.T, docs map[string]string) *Server {
	t.Helper()
	dir := t.TempDir()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	srv, err := NewServer(context.Background(), config.Default(dir))
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func callTool(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &parsed))
	return parsed
}

func TestGetSections_ResolvesAndFollowsReferences(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"app.md": appFixture,
		"ops.md": opsFixture,
	})

	result, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{
		"refs": []interface{}{"§APP.2"},
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Contains(t, response["content"], "Deployment details")
	assert.Contains(t, response["content"], "Operations content")
	assert.Equal(t, false, response["has_more"])

	sections, ok := response["sections"].([]interface{})
	require.True(t, ok)
	assert.Len(t, sections, 2)
}

func TestGetSections_MissingRefsParam(t *testing.T) {
	srv := newTestServer(t, map[string]string{"app.md": appFixture})

	_, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{}))
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGetSections_UnknownRefIsWarningByDefault(t *testing.T) {
	srv := newTestServer(t, map[string]string{"app.md": appFixture})

	result, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{
		"refs": []interface{}{"§APP.1", "§APP.9"},
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Contains(t, response["content"], "Application intro")
	warnings, ok := response["warnings"].([]interface{})
	require.True(t, ok)
	assert.Len(t, warnings, 1)
}

func TestGetSections_StrictModeFailsOnUnknownRef(t *testing.T) {
	srv := newTestServer(t, map[string]string{"app.md": appFixture})

	_, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{
		"refs":   []interface{}{"§APP.9"},
		"strict": true,
	}))
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeNotFound, mcpErr.Code)
}

func TestGetSections_ChunkContinuation(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"app.md": appFixture,
		"ops.md": opsFixture,
	})

	// A tiny budget forces at least two chunks.
	first, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{
		"refs":       []interface{}{"§APP"},
		"max_tokens": 10,
	}))
	require.NoError(t, err)
	firstResp := resultJSON(t, first)
	require.Equal(t, true, firstResp["has_more"])
	continuation, ok := firstResp["continuation"].(string)
	require.True(t, ok)

	second, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{
		"refs":       []interface{}{"§APP"},
		"max_tokens": 10,
		"chunk":      continuation,
	}))
	require.NoError(t, err)
	secondResp := resultJSON(t, second)
	assert.Equal(t, float64(1), secondResp["chunk_index"])
}

func TestGetSections_BadContinuationToken(t *testing.T) {
	srv := newTestServer(t, map[string]string{"app.md": appFixture})

	_, err := srv.handleGetSections(context.Background(), callTool(map[string]interface{}{
		"refs":  []interface{}{"§APP.1"},
		"chunk": "chunk:99",
	}))
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeBadContinuation, mcpErr.Code)
}

func TestLocateSections(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"app.md": appFixture,
		"ops.md": opsFixture,
	})

	result, err := srv.handleLocateSections(context.Background(), callTool(map[string]interface{}{
		"refs": []interface{}{"§OPS.1"},
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	files, ok := response["files"].(map[string]interface{})
	require.True(t, ok)
	require.Len(t, files, 1)
	for path, refs := range files {
		assert.Contains(t, path, "ops.md")
		assert.Equal(t, []interface{}{"§OPS.1"}, refs)
	}
}

func TestCheckFormat(t *testing.T) {
	srv := newTestServer(t, map[string]string{"app.md": appFixture})
	badPath := filepath.Join(t.TempDir(), "bad.md")
	require.NoError(t, os.WriteFile(badPath, []byte("## {§POL.1}\n\n## {§POL.4}\n"), 0644))

	result, err := srv.handleCheckFormat(context.Background(), callTool(map[string]interface{}{
		"file": badPath,
	}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, false, response["valid"])

	_, err = srv.handleCheckFormat(context.Background(), callTool(map[string]interface{}{
		"file": "relative/path.md",
	}))
	require.Error(t, err)
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ErrorCodeFileNotIndexable, mcpErr.Code)
}

func TestValidateIndex_ReportsDuplicates(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"a.md": "## {§DUP.1}\nFrom a.\n{§END}\n",
		"b.md": "## {§DUP.1}\nFrom b.\n{§END}\n",
	})

	result, err := srv.handleValidateIndex(context.Background(), callTool(map[string]interface{}{}))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, false, response["valid"])
	duplicates, ok := response["duplicates"].([]interface{})
	require.True(t, ok)
	require.Len(t, duplicates, 1)
}

func TestIndexStatus(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"app.md": appFixture,
		"ops.md": opsFixture,
	})

	result, err := srv.handleIndexStatus(context.Background(), callTool(nil))
	require.NoError(t, err)

	response := resultJSON(t, result)
	assert.Equal(t, float64(2), response["files"])
	assert.Equal(t, float64(3), response["sections"])
	assert.Equal(t, false, response["stale"])
	assert.ElementsMatch(t, []interface{}{"APP", "OPS"}, response["prefixes"])
}
