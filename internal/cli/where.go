package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dshills/sectionref-mcp/internal/resolver"
)

var whereCmd = &cobra.Command{
	Use:   "where <ref> [ref...]",
	Short: "Show which file defines each resolved section reference",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWhere,
}

func init() {
	rootCmd.AddCommand(whereCmd)
}

func runWhere(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	sections, err := svc.resolve(ctx, args, false)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resolver.GroupByFile(sections))
}
