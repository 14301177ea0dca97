// Package types provides shared type definitions for the sectionref MCP server.
//
// This package defines the domain model used across components: section
// references, gathered sections, chunks, check results, and the error
// taxonomy.
//
// # References
//
// A section reference addresses one section of a policy document by a
// compact identifier:
//
//	ref := types.Ref{Prefix: "APP", Path: "4.1"}
//	ref.String() // "§APP.4.1"
//
// A bare prefix (empty Path) is a wildcard addressing every section under
// that prefix. References have a total order (prefix ordinal, then numeric
// path component-wise) and a strict ancestor relation:
//
//	parent := types.Ref{Prefix: "APP", Path: "4"}
//	parent.IsParentOf(ref) // true
//
// # Error taxonomy
//
// Each failure kind carries a typed error that unwraps to a sentinel, so
// callers branch with errors.Is:
//
//	_, err := index.Resolve("§APP.9")
//	if errors.Is(err, types.ErrNotFound) {
//	    // downgrade to a warning in lenient resolution
//	}
//
// No error kind is retried automatically.
package types
