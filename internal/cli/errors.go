package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates the provider's API key environment variable is not set.
	ErrAPIKeyMissing = errors.New("API key environment variable not set")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrUnknownKind indicates an unsupported response kind for the validate command.
	ErrUnknownKind = errors.New("unknown response kind")

	// ErrUsage indicates flags that are missing or invalid for the chosen arguments.
	ErrUsage = errors.New("invalid usage")
)
