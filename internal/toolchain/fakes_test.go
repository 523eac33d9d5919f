package toolchain

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// fakeFileInfo implements os.FileInfo
type fakeFileInfo struct {
	name  string
	isDir bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0o644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.isDir }
func (f fakeFileInfo) Sys() any           { return nil }

// fakeFS is an in-memory FileSystem. Adding a path also adds its parents as directories.
type fakeFS struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (f *fakeFS) addDir(path string) *fakeFS {
	for p := filepath.Clean(path); !f.dirs[p]; p = filepath.Dir(p) {
		f.dirs[p] = true
		if filepath.Dir(p) == p {
			break
		}
	}
	return f
}

func (f *fakeFS) addFile(path, content string) *fakeFS {
	f.files[filepath.Clean(path)] = []byte(content)
	return f.addDir(filepath.Dir(path))
}

func (f *fakeFS) Stat(path string) (os.FileInfo, error) {
	path = filepath.Clean(path)
	if f.dirs[path] {
		return fakeFileInfo{name: filepath.Base(path), isDir: true}, nil
	}
	if _, ok := f.files[path]; ok {
		return fakeFileInfo{name: filepath.Base(path)}, nil
	}
	return nil, os.ErrNotExist
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f.files[filepath.Clean(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *fakeFS) ListDir(path string) ([]string, error) {
	path = filepath.Clean(path)
	if !f.dirs[path] {
		return nil, os.ErrNotExist
	}
	seen := map[string]bool{}
	collect := func(p string) {
		if p != path && filepath.Dir(p) == path {
			seen[filepath.Base(p)] = true
		}
	}
	for p := range f.files {
		collect(p)
	}
	for p := range f.dirs {
		collect(p)
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func envOf(vars map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// messages returns the formatted log messages at or above level.
func messages(hook *test.Hook, level logrus.Level) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		if e.Level <= level {
			out = append(out, e.Message)
		}
	}
	return out
}

func containsMessage(hook *test.Hook, substr string) bool {
	for _, e := range hook.AllEntries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
