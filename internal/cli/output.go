package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/erp/storesync/internal/domain/integration"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation was aborted
	ExitCommandError = 2 // bad arguments, unreadable config, unreachable database
	ExitPartial      = 3 // the pass finished with record exceptions
)

// ExitError carries the exit code of a failed command
type ExitError struct {
	Code    int
	Message string
	Err     error
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
// Returns ExitFailure if the error is not an ExitError.
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

// printResult writes a pass summary in the selected format
func printResult(w io.Writer, format string, result *integration.PassResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(w, "%s: created=%d updated=%d skipped=%d exceptions=%d\n",
		result.Operation, result.Created, result.Updated, result.Skipped, len(result.Exceptions))
	for _, exc := range result.Exceptions {
		fmt.Fprintf(w, "  %s %d [%s] %s\n", exc.Resource, exc.RemoteID, exc.Code, exc.Message)
	}
	return nil
}
