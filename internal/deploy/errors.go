package deploy

import (
	"fmt"
)

// Error reports a deployment step that failed.
type Error struct {
	Op    string
	Path  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("deploy %s %s: %v", e.Op, e.Path, e.Cause)
}
func (e *Error) Unwrap() error { return e.Cause }
