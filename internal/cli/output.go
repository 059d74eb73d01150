package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/pretty"
)

// debugSuffix replaces the output file's extension for the execution report.
const debugSuffix = ".debug.json"

// debugPath returns the report path written next to an output document:
// "out.json" becomes "out.debug.json".
func debugPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + debugSuffix
}

// prettyJSON re-indents a JSON document for output and guarantees a trailing newline.
func prettyJSON(data []byte) []byte {
	return pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "})
}

// writeOutput writes data to path. Existing files are only replaced when force is set.
func writeOutput(path string, data []byte, force bool) error {
	if force {
		// #nosec G306 -- user-specified output file with standard permissions
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("cannot write output file: %w", err)
		}
		return nil
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes content to path atomically.
// It fails if the file already exists (O_EXCL), preventing accidental overwrites.
// On write failure, the partial file is removed.
func writeFileAtomic(path string, content []byte) error {
	// #nosec G302 G304 -- user-specified output file with standard permissions
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("output file already exists: %s: %w", path, ErrOutputExists)
		}
		return fmt.Errorf("cannot create output file: %w", err)
	}

	writeErr := func() error {
		defer func() { _ = f.Close() }()
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}()

	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}

	return nil
}

// readInput reads an input file, reporting a missing file as ErrFileNotFound.
func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified input file
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return data, nil
}
