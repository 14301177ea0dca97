package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/sectionref-mcp/internal/checker"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Report section references defined in more than one indexed file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	ix, err := svc.state.EnsureFresh(ctx)
	if err != nil {
		return err
	}

	var report checker.Report
	if len(args) == 1 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		report = checker.ValidateFile(ix, path)
	} else {
		report = checker.Validate(ix)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if !report.Valid {
		return fmt.Errorf("%d references are defined in more than one file", len(report.Duplicates))
	}
	return nil
}
