package orchestrator

import (
	"errors"
	"fmt"
)

// Category groups fatal outcomes for reporting and exit codes.
type Category string

const (
	CategoryUsage     Category = "usage"
	CategoryConfig    Category = "config"
	CategoryToolchain Category = "toolchain"
	CategoryProduct   Category = "product"
	CategoryBuild     Category = "build"
	CategoryDeploy    Category = "deploy"
)

// RunError is a fatal run outcome.
type RunError struct {
	Category Category
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// ExitCode is the process exit status for this error. Every category exits 1.
func (e *RunError) ExitCode() int {
	return 1
}

// ExitCode maps err to a process exit status: 0 for nil, otherwise the
// RunError's code, or 1 for anything uncategorised.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.ExitCode()
	}
	return 1
}
