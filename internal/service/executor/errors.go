package executor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("command timeout")

// CommandError reports a command that could not be started or did not finish cleanly.
type CommandError struct {
	Cmd   string
	Stage string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed at %s: %v", e.Cmd, e.Stage, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }
