package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreFile is the name of the pattern file honoured in a deployment source tree.
const IgnoreFile = ".deployignore"

// IgnoreReadError is returned when the ignore file exists but cannot be read.
type IgnoreReadError struct {
	Path  string
	Cause error
}

func (e *IgnoreReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
}
func (e *IgnoreReadError) Unwrap() error { return e.Cause }

// fileSystem defines the minimal filesystem interface needed for the ignore matcher.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// IgnoreMatcher implements gitignore-syntax pattern matching using go-git's matcher.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher loads root/.deployignore.
// Returns a matcher that never ignores if the file doesn't exist (no error).
func NewIgnoreMatcher(root string, fs fileSystem) (*IgnoreMatcher, error) {
	if root == "" {
		panic("root is required")
	}
	if fs == nil {
		panic("fs is required")
	}
	ignorePath := filepath.Join(root, IgnoreFile)

	if _, err := fs.Stat(ignorePath); err != nil {
		return &IgnoreMatcher{matcher: nil}, nil
	}

	content, err := fs.ReadFile(ignorePath)
	if err != nil {
		return nil, &IgnoreReadError{Path: ignorePath, Cause: err}
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// ShouldIgnore checks if a path relative to the matcher root is excluded.
// Returns false if no ignore file was loaded.
func (m *IgnoreMatcher) ShouldIgnore(relativePath string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(relativePath), isDir)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	if path == "" {
		return []string{}
	}

	parts := strings.Split(filepath.ToSlash(path), "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}

	return segments
}
