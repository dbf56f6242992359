// Package display renders the schedule views with ANSI styling.
//
// Colors follow NO_COLOR (https://no-color.org/) and are turned off when
// stdout is not a terminal. FORCE_COLOR turns them back on.
package display

import (
	"fmt"
	"os"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	fgGray = "\033[90m"
)

// State is where a prayer stands relative to now in a schedule view.
type State int

const (
	// StateUpcoming is any later prayer that is not the next one.
	StateUpcoming State = iota
	// StatePassed is a prayer whose time and active window are over.
	StatePassed
	// StateActive is a prayer inside its active window.
	StateActive
	// StateNext is the first prayer after now.
	StateNext
)

// String returns the lower-case state name used in JSON output.
func (s State) String() string {
	switch s {
	case StatePassed:
		return "passed"
	case StateActive:
		return "active"
	case StateNext:
		return "next"
	default:
		return "upcoming"
	}
}

var enabled = shouldEnable()

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// SetEnabled overrides the auto-detected color state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return enabled
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Bold returns text rendered in bold.
func Bold(text string) string {
	return wrap(bold, text)
}

// Boldf formats and bolds a string.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}

// Dim returns text rendered faint.
func Dim(text string) string {
	return wrap(dim, text)
}

// Green returns text rendered in green.
func Green(text string) string {
	return wrap(green, text)
}

// Yellow returns text rendered in yellow.
func Yellow(text string) string {
	return wrap(yellow, text)
}

// Gray returns text rendered in gray.
func Gray(text string) string {
	return wrap(fgGray, text)
}

// Accent returns text in bold cyan, the "next prayer" highlight.
func Accent(text string) string {
	return wrap(bold+cyan, text)
}

// Styled renders text for a prayer in the given state.
func Styled(s State, text string) string {
	switch s {
	case StatePassed:
		return Dim(text)
	case StateActive:
		return Green(text)
	case StateNext:
		return Accent(text)
	default:
		return text
	}
}
