package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/config"
	"github.com/alnah/go-panelsplit/internal/format"
)

// suggestOptions holds parsed options for the suggest command.
type suggestOptions struct {
	modulePath string
	output     string
	force      bool
	llm        llmOptions
}

// SuggestCmd creates the suggest command (stage 2.5: propose splits).
// The env parameter provides injectable dependencies for testing.
func SuggestCmd(env *Env) *cobra.Command {
	var opts suggestOptions

	cmd := &cobra.Command{
		Use:   "suggest <module.json> <suggestions.json>",
		Short: "Propose panel splits for a module",
		Long: `Classify every slide of a module and ask the model for split proposals.

Bullet panels are split along block boundaries without a model call. Long
paragraph panels are reflowed into sentence-aligned chunks. Engage slides are
reviewed for oversized items and invalid button labels; those findings are
advisory only.

The suggestions file is the input of the apply command.`,
		Example: `  panelsplit suggest module.json suggestions.json
  panelsplit suggest module.json suggestions.json --provider anthropic
  panelsplit suggest module.json suggestions.json --cache ~/.cache/panelsplit.db -j 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.modulePath, opts.output = args[0], args[1]
			return runSuggest(cmd, env, opts)
		},
	}

	addLLMFlags(cmd, &opts.llm)
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing output files")

	return cmd
}

// runSuggest executes the suggest command.
func runSuggest(cmd *cobra.Command, env *Env, opts suggestOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, "suggestions.json")

	m, err := loadModule(opts.modulePath)
	if err != nil {
		return err
	}

	// === SUGGEST ===

	s, err := runSuggestions(ctx, env, cfg, opts.llm, m)
	if err != nil {
		return err
	}

	// === WRITE OUTPUT ===

	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	if err := writeOutput(output, data, opts.force); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "%s across %s\n",
		format.Count(s.Proposals(), "split proposal", "split proposals"),
		format.Count(len(s.Slides), "slide", "slides"))
	fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	return nil
}
