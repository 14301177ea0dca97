// Package mcp implements the Model Context Protocol (MCP) server for
// section reference lookup.
//
// The server exposes five tools to MCP clients:
//   - get_sections: fetch section content by §PREFIX.N reference
//   - locate_sections: map references to their defining files
//   - check_format: lint one file's section structure
//   - validate_index: report duplicate section definitions
//   - index_status: index statistics and staleness
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout is reserved for protocol messages; all logging goes to stderr.
//
// # Tool: get_sections
//
// Fetch section content, following embedded references recursively:
//
//	Request:
//	{
//	  "name": "get_sections",
//	  "arguments": {
//	    "refs": ["§APP.4", "§OPS.1-3"],
//	    "max_tokens": 2000
//	  }
//	}
//
//	Response:
//	{
//	  "content": "## {§APP.4}\n...",
//	  "chunk_index": 0,
//	  "chunk_total": 2,
//	  "has_more": true,
//	  "continuation": "chunk:1",
//	  "sections": [{"ref": "§APP.4", "file": "/docs/app.md"}, ...]
//	}
//
// An oversized result is chunked at section boundaries; redeem the
// continuation token in a follow-up call to fetch the next part. By
// default unresolvable references degrade to warnings in the response;
// pass "strict": true to make them abort the request instead.
//
// # Tool: locate_sections
//
// Answer "where is this defined" without returning content:
//
//	Request:  {"name": "locate_sections", "arguments": {"refs": ["§APP"]}}
//	Response: {"files": {"/docs/app.md": ["§APP.1", "§APP.2"]}}
//
// # Tool: check_format
//
// Lint a single file:
//
//	Request:  {"name": "check_format", "arguments": {"file": "/docs/app.md"}}
//	Response: {"file": "/docs/app.md", "valid": false,
//	           "errors": [{"code": "NUMBERING_GAP", "line": 12, ...}], ...}
//
// # Error Handling
//
// Failures are returned as JSON-RPC errors:
//   - -32602: invalid params (missing arguments, malformed reference)
//   - -32603: internal error (rebuild failure, I/O)
//   - -32001: reference not found
//   - -32002: reference defined in multiple files
//   - -32003: continuation token out of range
//   - -32004: file missing or not a regular file
//
// # Freshness
//
// Every content-serving handler calls EnsureFresh before reading the
// index, so a response never reflects a file state older than the last
// watched change event plus one debounce interval.
package mcp
