package prayer

import "errors"

// Error classes. Every error leaving this module wraps exactly one of them
// so the command can map it to an exit status.
var (
	// ErrInvalidArgument indicates bad user input: an unknown prayer name or a malformed flag value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrComputation indicates the schedule could not be computed for the given location and date.
	ErrComputation = errors.New("cannot compute prayer times")
	// ErrSelection indicates an internal inconsistency while picking a prayer.
	ErrSelection = errors.New("selection failed")
)
