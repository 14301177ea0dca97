// Package config loads the JSON project configuration and expands its
// file patterns into the ordered absolute path list the index consumes.
package config
