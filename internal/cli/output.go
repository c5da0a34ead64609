package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/roach88/tidepool/internal/hostval"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (query error, migration mismatch, etc.)
	ExitCommandError = 2 // Command error (invalid paths, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError, ExitSuccess for nil.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// writeValue prints a host value in the requested format. JSON output is
// canonical, so repeated runs over the same data are byte-identical.
func writeValue(w io.Writer, format string, value hostval.Value) error {
	if format == "json" {
		data, err := hostval.MarshalCanonical(value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	return writeText(w, value)
}

// writeText prints a host value as loosely tabular text: arrays one element
// per line, everything else canonical JSON on one line.
func writeText(w io.Writer, value hostval.Value) error {
	arr, ok := value.(hostval.Array)
	if !ok {
		data, err := hostval.MarshalCanonical(value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	for _, elem := range arr {
		data, err := hostval.MarshalCanonical(elem)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}
