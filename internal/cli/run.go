package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/config"
)

// runOptions holds parsed options for the run command.
type runOptions struct {
	modulePath  string
	output      string
	suggestions string
	force       bool
	llm         llmOptions
}

// RunCmd creates the run command (suggest and apply in one process).
// The env parameter provides injectable dependencies for testing.
func RunCmd(env *Env) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <module.json> <out.json>",
		Short: "Suggest and apply panel splits in one step",
		Long: `Run the suggestion pass and execute its result immediately.

Equivalent to suggest followed by apply. The intermediate suggestions are
kept only when --suggestions names a file.`,
		Example: `  panelsplit run module.json module.split.json
  panelsplit run module.json out.json --suggestions suggestions.json --provider gemini`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.modulePath, opts.output = args[0], args[1]
			return runRun(cmd, env, opts)
		},
	}

	addLLMFlags(cmd, &opts.llm)
	cmd.Flags().StringVar(&opts.suggestions, "suggestions", "", "Also write the intermediate suggestions to this file")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing output files")

	return cmd
}

// runRun executes the run command.
func runRun(cmd *cobra.Command, env *Env, opts runOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, "module.json")

	m, err := loadModule(opts.modulePath)
	if err != nil {
		return err
	}

	s, err := runSuggestions(ctx, env, cfg, opts.llm, m)
	if err != nil {
		return err
	}

	if opts.suggestions != "" {
		data, err := s.Encode()
		if err != nil {
			return fmt.Errorf("encode suggestions: %w", err)
		}
		path := config.ResolveOutputPath(opts.suggestions, cfg.OutputDir, "suggestions.json")
		if err := writeOutput(path, data, opts.force); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Suggestions: %s\n", path)
	}

	return applyAndWrite(env, cfg, m, s, output, opts.force)
}
