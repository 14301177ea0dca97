package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/sectionref-mcp/internal/checker"
	"github.com/dshills/sectionref-mcp/internal/chunker"
	"github.com/dshills/sectionref-mcp/internal/resolver"
	"github.com/dshills/sectionref-mcp/internal/storage"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound         = -32001 // Reference absent from the index
	ErrorCodeDuplicate        = -32002 // Reference defined in more than one file
	ErrorCodeBadContinuation  = -32003 // Continuation token out of range
	ErrorCodeFileNotIndexable = -32004 // File missing or not a regular file
)

// handleGetSections handles the get_sections tool invocation
func (s *Server) handleGetSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	refs, err := getStringSlice(args, "refs")
	if err != nil || len(refs) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "refs parameter is required", map[string]interface{}{
			"param":  "refs",
			"reason": "missing or empty",
		})
	}

	maxTokens := getIntDefault(args, "max_tokens", s.cfg.MaxTokens)
	if maxTokens < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_tokens must be positive", map[string]interface{}{
			"param": "max_tokens",
			"value": maxTokens,
		})
	}
	strict := getBoolDefault(args, "strict", false)
	continuation := getStringDefault(args, "chunk", "")

	ix, err := s.state.EnsureFresh(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var warnings []string
	sections, err := resolver.New(ix).Resolve(refs, resolver.Options{
		Lenient: !strict,
		Warn: func(ref string, err error) {
			warnings = append(warnings, fmt.Sprintf("%s: %s", ref, err))
		},
	})
	if err != nil {
		return nil, resolutionError(err)
	}

	combined := resolver.Combined(sections)
	ck := chunker.New(maxTokens)

	var chunk types.Chunk
	if continuation != "" {
		index, err := chunker.ParseContinuation(continuation)
		if err != nil {
			return nil, newMCPError(ErrorCodeBadContinuation, "invalid continuation token", map[string]interface{}{
				"chunk":  continuation,
				"reason": err.Error(),
			})
		}
		chunk, err = ck.Chunk(combined, index)
		if err != nil {
			return nil, resolutionError(err)
		}
	} else {
		chunk = ck.Split(combined)[0]
	}

	gathered := make([]map[string]interface{}, len(sections))
	for i, sec := range sections {
		gathered[i] = map[string]interface{}{
			"ref":  sec.Ref.String(),
			"file": sec.SourceFile,
		}
	}

	response := map[string]interface{}{
		"content":     chunk.Content,
		"chunk_index": chunk.Index,
		"chunk_total": chunk.Total,
		"has_more":    chunk.HasMore,
		"sections":    gathered,
	}
	if chunk.Continuation != "" {
		response["continuation"] = chunk.Continuation
	}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleLocateSections handles the locate_sections tool invocation
func (s *Server) handleLocateSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	refs, err := getStringSlice(args, "refs")
	if err != nil || len(refs) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "refs parameter is required", map[string]interface{}{
			"param":  "refs",
			"reason": "missing or empty",
		})
	}

	ix, err := s.state.EnsureFresh(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var warnings []string
	sections, err := resolver.New(ix).Resolve(refs, resolver.Options{
		Lenient: true,
		Warn: func(ref string, err error) {
			warnings = append(warnings, fmt.Sprintf("%s: %s", ref, err))
		},
	})
	if err != nil {
		return nil, resolutionError(err)
	}

	response := map[string]interface{}{
		"files": resolver.GroupByFile(sections),
	}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCheckFormat handles the check_format tool invocation
func (s *Server) handleCheckFormat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}
	if err := validateFilePath(file); err != nil {
		return nil, newMCPError(ErrorCodeFileNotIndexable, "invalid file", map[string]interface{}{
			"param":  "file",
			"reason": err.Error(),
		})
	}

	result, err := checker.CheckFile(file)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "check failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSONValue(result)), nil
}

// handleValidateIndex handles the validate_index tool invocation
func (s *Server) handleValidateIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	file := getStringDefault(args, "file", "")

	ix, err := s.state.EnsureFresh(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "index rebuild failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var report checker.Report
	if file != "" {
		report = checker.ValidateFile(ix, file)
	} else {
		report = checker.Validate(ix)
	}

	return mcp.NewToolResultText(formatJSONValue(report)), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ix := s.state.Index()

	response := map[string]interface{}{
		"base_dir":   s.cfg.BaseDir,
		"files":      len(ix.Files),
		"sections":   ix.SectionCount(),
		"duplicates": len(ix.Duplicates),
		"built_at":   ix.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
		"stale":      s.state.Stale(),
		"rebuilding": s.state.Rebuilding(),
		"prefixes":   ix.Prefixes(),
	}
	if s.store != nil {
		response["snapshot"] = map[string]interface{}{
			"path":   s.cfg.CachePath,
			"driver": storage.DriverName,
			"mode":   storage.BuildMode,
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// resolutionError maps the resolver's error taxonomy onto MCP codes.
func resolutionError(err error) error {
	switch {
	case errors.Is(err, types.ErrParse):
		return newMCPError(ErrorCodeInvalidParams, "invalid reference", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrNotFound):
		return newMCPError(ErrorCodeNotFound, "reference not found", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrDuplicate):
		return newMCPError(ErrorCodeDuplicate, "reference defined in multiple files", map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, types.ErrChunking):
		return newMCPError(ErrorCodeBadContinuation, "continuation out of range", map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return newMCPError(ErrorCodeInternalError, "resolution failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// validateFilePath checks that a path names an existing regular file.
func validateFilePath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if info.IsDir() {
		return ErrNotRegularFile
	}
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	return formatJSONValue(data)
}

// formatJSONValue formats any value as indented JSON
func formatJSONValue(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringSlice extracts a string-array parameter
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotRegularFile  = errors.New("path is not a regular file")
)
