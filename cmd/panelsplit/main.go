package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-panelsplit/internal/apierr"
	"github.com/alnah/go-panelsplit/internal/apply"
	"github.com/alnah/go-panelsplit/internal/cli"
	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/config"
	"github.com/alnah/go-panelsplit/internal/interrupt"
	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/prompt"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitTransport  = 5
	ExitBounds     = 6
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels pending model calls, a second one aborts.
	handler, ctx := interrupt.NewHandler(context.Background())

	env := cli.DefaultEnv()
	rootCmd := cli.RootCmd(env, fmt.Sprintf("%s (commit: %s)", version, commit))

	err := rootCmd.ExecuteContext(ctx)
	interrupted := handler.Interrupted()
	handler.Stop()

	if err != nil {
		if interrupted {
			fmt.Fprintln(os.Stderr, "Interrupted. No output written.")
			os.Exit(ExitInterrupt)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors and bad flag combinations.
	if isCobraUsageError(err) || errors.Is(err, cli.ErrUsage) || errors.Is(err, cli.ErrUnknownKind) ||
		errors.Is(err, prompt.ErrUnknown) || errors.Is(err, module.ErrInvalidWindow) ||
		errors.Is(err, config.ErrUnknownKey) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, cli.ErrInvalidProvider) ||
		errors.Is(err, completion.ErrEmptyAPIKey) || errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable) {
		return ExitSetup
	}

	// Bounds and reconstruction errors (ExitBounds = 6). Checked before
	// validation because a mismatch is also a rejection.
	if errors.Is(err, apply.ErrBoundsViolation) || errors.Is(err, validate.ErrReconstructionMismatch) {
		return ExitBounds
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, module.ErrStructuralInput) || errors.Is(err, module.ErrEmptySource) ||
		errors.Is(err, apply.ErrInvalidSuggestion) || errors.Is(err, validate.ErrRejected) ||
		errors.Is(err, validate.ErrUnsafe) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrOutputExists) {
		return ExitValidation
	}

	// Transport errors (ExitTransport = 5).
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, apierr.ErrTransport) ||
		errors.Is(err, apierr.ErrMalformedResponse) {
		return ExitTransport
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
