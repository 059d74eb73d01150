package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/config"
)

// envFallbacks maps config keys to the environment variables consulted when
// the file leaves them unset.
var envFallbacks = map[string]string{
	config.KeyProvider:  config.EnvProvider,
	config.KeyModel:     config.EnvModel,
	config.KeyOutputDir: config.EnvOutputDir,
	config.KeyCache:     config.EnvCache,
	config.KeyLogLevel:  config.EnvLogLevel,
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/panelsplit/config.yaml.
Settings can also be overridden via environment variables.

Supported settings:
  provider      Completion provider (env: PANELSPLIT_PROVIDER)
  model         Provider model (env: PANELSPLIT_MODEL)
  output-dir    Default directory for output files (env: PANELSPLIT_OUTPUT_DIR)
  cache         Response cache directory or SQLite file (env: PANELSPLIT_CACHE)
  log-level     debug, info, warn or error (env: PANELSPLIT_LOG_LEVEL)
  max-retries   Attempts per model call
  policy.*      Segmentation thresholds (word window, engage limits, ...)`,
		Example: `  panelsplit config set provider anthropic
  panelsplit config set policy.max-words 80
  panelsplit config get output-dir
  panelsplit config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Supported keys:
  ` + strings.Join(config.Keys(), "\n  ") + `

For output-dir, the directory is created if it doesn't exist.`,
		Example: `  panelsplit config set output-dir ~/modules/split
  panelsplit config set policy.min-words 25`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return runConfigSet(env, key, value)
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  panelsplit config get provider`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  panelsplit config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w %q (valid keys: %s)", config.ErrUnknownKey, key, strings.Join(config.Keys(), ", "))
	}

	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
		value = expanded
	case config.KeyProvider:
		p, err := ParseProvider(value)
		if err != nil {
			return err
		}
		value = p.String()
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w %q (valid keys: %s)", config.ErrUnknownKey, key, strings.Join(config.Keys(), ", "))
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	if value == "" {
		if name, ok := envFallbacks[key]; ok {
			value = env.Getenv(name)
		}
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	for key, name := range envFallbacks {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(name); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, data[key])
	}

	return nil
}

// isValidConfigKey checks if a key is a valid configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(config.Keys(), key)
}
