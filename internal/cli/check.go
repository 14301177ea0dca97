package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/sectionref-mcp/internal/checker"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <file> [file...]",
	Short: "Lint section structure: marker grammar, heading depth, numbering, fences",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	results := make([]types.CheckResult, 0, len(args))
	failed := 0
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		result, err := checker.CheckFile(path)
		if err != nil {
			return err
		}
		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files have format errors", failed, len(args))
	}
	return nil
}
