package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/sectionref-mcp/internal/parser"
	"github.com/dshills/sectionref-mcp/internal/resolver"
)

// hookInput is the JSON a prompt hook receives on stdin.
type hookInput struct {
	Prompt string `json:"prompt"`
}

// hookOutput is the JSON written back; AdditionalContext is injected
// into the conversation by the host.
type hookOutput struct {
	AdditionalContext string `json:"additionalContext,omitempty"`
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Prompt hook: expand §-references mentioned in a prompt read from stdin",
	Long: `Read {"prompt": "..."} from stdin, scan the prompt for section
references, and write {"additionalContext": "..."} with the referenced
content to stdout. Intended to be wired as a prompt-submit hook so
conversations mentioning §APP.4 automatically carry that section.

Unresolvable references are skipped; a prompt without references
produces an empty object.`,
	Args: cobra.NoArgs,
	RunE: runPromptHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runPromptHook(cmd *cobra.Command, args []string) error {
	var in hookInput
	if err := json.NewDecoder(cmd.InOrStdin()).Decode(&in); err != nil {
		return fmt.Errorf("reading hook input: %w", err)
	}

	out := json.NewEncoder(cmd.OutOrStdout())

	tokens := parser.New().ScanText(in.Prompt)
	if len(tokens) == 0 {
		return out.Encode(hookOutput{})
	}

	ctx := cmd.Context()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	sections, err := svc.resolve(ctx, tokens, false)
	if err != nil {
		return err
	}

	return out.Encode(hookOutput{AdditionalContext: resolver.Combined(sections)})
}
