// Package parser implements the section reference notation: parsing,
// range and wildcard expansion, and embedded-reference scanning.
//
// # Notation
//
// A reference is §PREFIX followed by an optional dot-separated numeric
// path. Prefixes are uppercase, may contain digits, and may join
// letter-led segments with single hyphens (§APP-HOOK.2). A bare prefix is
// a wildcard for every section under it.
//
// # Ranges
//
//	§APP.4.2-7    -> §APP.4.2 ... §APP.4.7
//	§APP.4.2-4.7  -> same, explicit form
//	§APP.2-5      -> §APP.2 ... §APP.5
//
// A backwards range expands to nothing and raises no error; downstream
// callers rely on the silent-empty behavior.
//
// # Scanning
//
// ScanText finds reference tokens in arbitrary text while ignoring inline
// code spans and fenced code blocks. Fences are tracked by an explicit
// per-line state machine (FenceTracker) whose rules match the section
// extractor's, so a reference mentioned inside an example block is never
// treated as a link.
package parser
