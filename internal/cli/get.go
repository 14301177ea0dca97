package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/sectionref-mcp/internal/chunker"
	"github.com/dshills/sectionref-mcp/internal/resolver"
	"github.com/dshills/sectionref-mcp/pkg/types"
)

var (
	getMaxTokens int
	getChunk     string
	getStrict    bool
)

var getCmd = &cobra.Command{
	Use:   "get <ref> [ref...]",
	Short: "Print the content of sections and everything they reference",
	Long: `Resolve one or more section references and print the combined
content. References may be concrete (§APP.4), ranges (§APP.1-3), or
bare prefixes (§APP) meaning every section with that prefix.

Output over the token budget is split at section boundaries; rerun with
--chunk to fetch the next part.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().IntVar(&getMaxTokens, "max-tokens", 0,
		"approximate token budget per output chunk (0 uses the configured default)")
	getCmd.Flags().StringVar(&getChunk, "chunk", "",
		`continuation token from a previous call ("chunk:2")`)
	getCmd.Flags().BoolVar(&getStrict, "strict", false,
		"fail on unresolvable references instead of warning")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	sections, err := svc.resolve(ctx, args, getStrict)
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return fmt.Errorf("no sections resolved for %v", args)
	}

	maxTokens := getMaxTokens
	if maxTokens <= 0 {
		maxTokens = svc.cfg.MaxTokens
	}
	ck := chunker.New(maxTokens)
	combined := resolver.Combined(sections)

	var chunk types.Chunk
	if getChunk != "" {
		index, err := chunker.ParseContinuation(getChunk)
		if err != nil {
			return err
		}
		chunk, err = ck.Chunk(combined, index)
		if err != nil {
			return err
		}
	} else {
		chunk = ck.Split(combined)[0]
	}

	fmt.Fprintln(cmd.OutOrStdout(), chunk.Content)
	if chunk.HasMore {
		fmt.Fprintf(os.Stderr, "output truncated (chunk %d of %d), rerun with --chunk %s\n",
			chunk.Index+1, chunk.Total, chunk.Continuation)
	}
	return nil
}
