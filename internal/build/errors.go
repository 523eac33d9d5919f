package build

import (
	"fmt"
)

// Error reports a build that did not succeed.
type Error struct {
	Descriptor string
	ExitCode   int
	// Tail holds the last lines of build output.
	Tail  []string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("build of %s failed (exit code %d): %v", e.Descriptor, e.ExitCode, e.Cause)
}
func (e *Error) Unwrap() error { return e.Cause }
