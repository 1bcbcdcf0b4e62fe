package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/clubdesk/internal/api"
	"github.com/julianstephens/clubdesk/internal/logger"
)

// Exit codes used by Fatal.
const (
	ExitFailure       = 1
	ExitNotConfigured = 2
	ExitUnauthorized  = 3
	ExitNetwork       = 4
)

// Format renders err with an "Error: " prefix, followed by a hint when the
// user can do something about it.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Error: %v (%s)", err, hint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Hint returns the next step for a failed API call, or "".
func Hint(err error) string {
	switch {
	case stderrors.Is(err, api.ErrUnauthorized):
		return "run 'clubdesk login' to sign in again"
	case stderrors.Is(err, api.ErrNotConfigured):
		return "run 'clubdesk init --api-url <url>' first"
	case stderrors.Is(err, api.ErrNetwork):
		return "check your connection, or read the cache with 'clubdesk event list --offline'"
	}
	return ""
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, api.ErrUnauthorized):
		return ExitUnauthorized
	case stderrors.Is(err, api.ErrNotConfigured):
		return ExitNotConfigured
	case stderrors.Is(err, api.ErrNetwork):
		return ExitNetwork
	}
	return ExitFailure
}

// Fatal logs err, prints it to stderr and exits with ExitCode(err).
// A nil err does nothing.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err, "exit", ExitCode(err))
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(ExitCode(err))
}
