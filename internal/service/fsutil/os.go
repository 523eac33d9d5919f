package fsutil

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFileSystem implements filesystem operations using the local OS filesystem primitives.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (r *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the whole file.
func (r *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ListDir returns the names of the entries in a directory, sorted by name.
func (r *OSFileSystem) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// Walk walks the tree rooted at root in lexical order.
func (r *OSFileSystem) Walk(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn)
}

// EnsureDirs creates a directory and its parents if they don't exist.
func (r *OSFileSystem) EnsureDirs(path string) error {
	return os.MkdirAll(path, 0o755)
}

// CopyFile copies src to dst, replacing dst. The parent of dst must exist.
func (r *OSFileSystem) CopyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	if err := out.Close(); err != nil {
		return &CopyError{Src: src, Dst: dst, Cause: err}
	}
	return nil
}

// WriteFileAtomic writes content to a file atomically using temp file + rename pattern.
// The temp file is created in the same directory as the target so the rename stays on one filesystem.
func (r *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &TempFileError{Dir: dir, Cause: err}
	}

	tmpPath := tmpFile.Name()
	needsCleanup := true

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if needsCleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &TempWriteError{Path: tmpPath, Cause: err}
	}

	if err := tmpFile.Sync(); err != nil {
		return &TempSyncError{Path: tmpPath, Cause: err}
	}

	// Close before rename (required on Windows)
	if err := tmpFile.Close(); err != nil {
		tmpFile = nil
		return &TempCloseError{Path: tmpPath, Cause: err}
	}
	tmpFile = nil

	if err := os.Rename(tmpPath, path); err != nil {
		return &RenameError{Old: tmpPath, New: path, Cause: err}
	}
	needsCleanup = false

	if err := os.Chmod(path, perm); err != nil {
		return &ChmodError{Path: path, Mode: perm, Cause: err}
	}

	return nil
}
