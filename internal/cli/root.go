// Package cli implements the command-line interface.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var baseDir string

var rootCmd = &cobra.Command{
	Use:   "sectionref",
	Short: "Section reference index and resolver for sectioned markdown",
	Long: `sectionref indexes markdown files that declare sections with
{§PREFIX.N} markers and resolves §-references against them: fetch a
section together with everything it mentions, find where a reference is
defined, or lint a file's section structure.

It also runs as an MCP server (see "sectionref serve") so coding
assistants can pull referenced sections on demand.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&baseDir, "dir", "d", ".",
		"base directory holding the documents and sectionref.json")
}

// setupLogging routes structured logs to stderr; stdout stays free for
// command output and the MCP protocol.
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("SECTIONREF_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
