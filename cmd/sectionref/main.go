// Package main is the entry point for the sectionref CLI and MCP server.
package main

import (
	"os"

	"github.com/dshills/sectionref-mcp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
