// Package toolchain discovers the installed Micro Focus toolchain and decides
// how an application can be built and deployed against it.
//
// Nothing in this package mutates the process environment. Every value a later
// stage needs (COBDIR, JAVA_HOME, ANT_HOME) travels in an immutable Context.
package toolchain

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Platform identifies the operating system family the toolchain is installed on.
// It selects default install locations and bundled component names.
type Platform string

const (
	Windows Platform = "windows"
	Linux   Platform = "linux"
	AIX     Platform = "aix"
	Solaris Platform = "solaris"
)

var platforms = []Platform{Windows, Linux, AIX, Solaris}

// CurrentPlatform maps runtime.GOOS to a Platform. Unknown systems are treated as Linux.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "aix":
		return AIX
	case "solaris", "illumos":
		return Solaris
	default:
		return Linux
	}
}

// ParsePlatform accepts a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range platforms {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (want one of %v)", s, platforms)
}

func (p Platform) IsWindows() bool {
	return p == Windows
}

// LookupEnv reads a variable from an environment snapshot.
type LookupEnv func(key string) (string, bool)

// OSLookupEnv reads the real process environment.
func OSLookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// FileSystem is the read-only view of the disk the resolvers need.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	// ListDir returns entry names sorted lexically.
	ListDir(path string) ([]string, error)
}

func isFile(fs FileSystem, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(fs FileSystem, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.IsDir()
}
