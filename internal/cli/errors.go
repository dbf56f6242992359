package cli

import (
	"errors"

	"github.com/smokyabdulrahman/next-salah/internal/prayer"
)

// Process exit statuses.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitInvalidArgument = 2
	ExitComputation     = 3
	ExitSelection       = 4
)

// ExitCode maps an error returned by the root command to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, prayer.ErrInvalidArgument):
		return ExitInvalidArgument
	case errors.Is(err, prayer.ErrComputation):
		return ExitComputation
	case errors.Is(err, prayer.ErrSelection):
		return ExitSelection
	default:
		return ExitFailure
	}
}

// ErrorMessage returns the line printed to stderr for err.
func ErrorMessage(err error) string {
	if errors.Is(err, prayer.ErrSelection) {
		return "unexpected error: " + err.Error()
	}
	return "error: " + err.Error()
}
