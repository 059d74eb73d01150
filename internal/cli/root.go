package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Logging defaults.
const (
	// EnvLogMode selects the log encoder: "prod" for JSON, anything else for console.
	EnvLogMode = "PANELSPLIT_LOG_MODE"

	defaultLogLevel = "warn"
)

// RootCmd creates the panelsplit root command with every subcommand attached.
// The env parameter provides injectable dependencies for testing.
func RootCmd(env *Env, version string) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "panelsplit",
		Short: "Split overlong e-learning panels into readable slides",
		Long: `Segment long instructional panels of an e-learning module into
panel-sized slides without changing a word.

The pipeline runs in two stages: suggest asks a model for sentence
boundaries and groupings, apply executes those suggestions deterministically
and re-checks every one of them.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(env, logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.Logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, else warn)")

	cmd.AddCommand(SuggestCmd(env))
	cmd.AddCommand(ApplyCmd(env))
	cmd.AddCommand(RunCmd(env))
	cmd.AddCommand(ClassifyCmd(env))
	cmd.AddCommand(ValidateCmd(env))
	cmd.AddCommand(SourceCmd(env))
	cmd.AddCommand(PromptCmd(env))
	cmd.AddCommand(ConfigCmd(env))

	return cmd
}

// setupLogger replaces env.Logger with one at the requested level.
// An explicit flag wins over the configured level.
func setupLogger(env *Env, level string) error {
	if level == "" {
		if cfg, err := env.ConfigLoader.Load(); err == nil {
			level = cfg.LogLevel
		}
	}
	if level == "" {
		level = defaultLogLevel
	}

	l, err := env.NewLogger(env.Getenv(EnvLogMode), level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	env.Logger = l
	return nil
}
