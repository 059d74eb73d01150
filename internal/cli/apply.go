package cli

import (
	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/config"
)

// applyOptions holds parsed options for the apply command.
type applyOptions struct {
	modulePath      string
	suggestionsPath string
	output          string
	force           bool
}

// ApplyCmd creates the apply command (stage 2.6: execute suggestions).
// The env parameter provides injectable dependencies for testing.
func ApplyCmd(env *Env) *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply <module.json> <suggestions.json> <out.json>",
		Short: "Execute split suggestions against a module",
		Long: `Execute a suggestions file against a module without calling any model.

Every split is re-checked against its slide: block groups must cover the
slide's blocks in order, and reflowed chunks must reproduce the panel text
and fit the word window. A report of every slide's outcome is written next
to the output as <out>.debug.json.`,
		Example: `  panelsplit apply module.json suggestions.json module.split.json
  panelsplit apply module.json suggestions.json out.json --force`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.modulePath, opts.suggestionsPath, opts.output = args[0], args[1], args[2]
			return runApply(env, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite existing output files")

	return cmd
}

// runApply executes the apply command.
func runApply(env *Env, opts applyOptions) error {
	cfg, err := loadConfig(env)
	if err != nil {
		return err
	}
	output := config.ResolveOutputPath(opts.output, cfg.OutputDir, "module.json")

	m, err := loadModule(opts.modulePath)
	if err != nil {
		return err
	}
	s, err := loadSuggestions(opts.suggestionsPath)
	if err != nil {
		return err
	}

	return applyAndWrite(env, cfg, m, s, output, opts.force)
}
