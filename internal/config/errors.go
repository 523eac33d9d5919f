package config

import (
	"fmt"
	"strings"
)

// OptionsNotFoundError is returned when the named options file does not exist.
// Available lists the regular files found in the options directory.
type OptionsNotFoundError struct {
	Path      string
	Available []string
}

func (e *OptionsNotFoundError) Error() string {
	return fmt.Sprintf("File %s could not be found", e.Path)
}

// ParseError is returned when a configuration file is not valid JSON.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Cause)
}
func (e *ParseError) Unwrap() error { return e.Cause }

// ReadError is returned when a configuration file exists but cannot be read.
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
}
func (e *ReadError) Unwrap() error { return e.Cause }

// ValidationError lists every problem found in a deployment options file.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid options file %s: %s", e.Path, strings.Join(e.Problems, "; "))
}
