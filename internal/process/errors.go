package process

import (
	"fmt"

	"github.com/mrz1836/xcbundle/internal/errors"
)

// ExitKind distinguishes how a failed process terminated.
type ExitKind int

const (
	// NonZeroExit means the process exited normally with a non-zero code.
	NonZeroExit ExitKind = iota + 1
	// SignalExit means the process was terminated by a signal.
	SignalExit
)

// ProcessError reports an external command that did not exit cleanly.
// It matches errors.ErrExternalTool via errors.Is.
type ProcessError struct {
	// Command is the logical command name (xcodebuild, not xcrun).
	Command string
	// Kind is NonZeroExit or SignalExit.
	Kind ExitKind
	// Code is the exit code for NonZeroExit.
	Code int
	// Signal is the signal number for SignalExit.
	Signal int
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Kind == SignalExit {
		return fmt.Sprintf("%s exited due to signal: %d", e.Command, e.Signal)
	}
	return fmt.Sprintf("%s exited with a non-zero code: %d", e.Command, e.Code)
}

// Unwrap lets callers match the ErrExternalTool sentinel.
func (e *ProcessError) Unwrap() error {
	return errors.ErrExternalTool
}
