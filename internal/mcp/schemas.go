package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// getSectionsTool returns the tool definition for get_sections
func getSectionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_sections",
		Description: "Fetch the content of policy sections by §PREFIX.N reference, following embedded references recursively",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"refs": map[string]interface{}{
					"type":        "array",
					"description": "Section references to fetch (e.g. \"§APP.4\", a range \"§APP.1-3\", or a bare prefix \"§APP\" for all of them)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"chunk": map[string]interface{}{
					"type":        "string",
					"description": "Continuation token from a previous call (\"chunk:2\") to fetch the next part of an oversized result",
				},
				"max_tokens": map[string]interface{}{
					"type":        "integer",
					"description": "Approximate token budget per response chunk",
					"minimum":     1,
				},
				"strict": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, unresolvable or duplicated references abort the request instead of degrading to warnings",
					"default":     false,
				},
			},
			Required: []string{"refs"},
		},
	}
}

// locateSectionsTool returns the tool definition for locate_sections
func locateSectionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "locate_sections",
		Description: "Report which file defines each requested section reference, without returning content",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"refs": map[string]interface{}{
					"type":        "array",
					"description": "Section references, ranges, or bare prefixes to locate",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"refs"},
		},
	}
}

// checkFormatTool returns the tool definition for check_format
func checkFormatTool() mcp.Tool {
	return mcp.Tool{
		Name:        "check_format",
		Description: "Lint one file's section structure: marker grammar, heading depth, numbering contiguity, fence balance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the file to check",
				},
			},
			Required: []string{"file"},
		},
	}
}

// validateIndexTool returns the tool definition for validate_index
func validateIndexTool() mcp.Tool {
	return mcp.Tool{
		Name:        "validate_index",
		Description: "Report section references defined in more than one indexed file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "Restrict the report to duplicates involving this file",
				},
			},
		},
	}
}

// indexStatusTool returns the tool definition for index_status
func indexStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_status",
		Description: "Query index statistics: file and section counts, duplicates, staleness",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
