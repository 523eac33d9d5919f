// Package deploy copies built load modules into a region's system directory.
package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Cyclone1070/mfdeploy/internal/service/git"
	"github.com/Cyclone1070/mfdeploy/internal/toolchain"
)

const (
	// LoadDir is the directory, under both the project root and the region system
	// directory, that holds load modules.
	LoadDir = "loadlib"
	// ManifestFile is written into the deployed load directory after every deploy.
	ManifestFile = "deploy-manifest.json"
)

// ErrNoLoadModules is returned when the project has no load directory to deploy.
var ErrNoLoadModules = errors.New("no load modules to deploy")

// Request describes one deployment.
type Request struct {
	ProjectRoot string
	SystemBase  string
	Platform    toolchain.Platform
	Is64Bit     bool
}

// Result summarises a finished deployment.
type Result struct {
	Target   string
	Files    []string
	Ignored  int
	Manifest string
}

// Manifest records what was deployed, from where and when.
type Manifest struct {
	SystemBase string        `json:"system_base"`
	Platform   string        `json:"platform"`
	Is64Bit    string        `json:"is64bit"`
	DeployedAt time.Time     `json:"deployed_at"`
	Revision   *git.Revision `json:"revision,omitempty"`
	Files      []string      `json:"files"`
}

type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Walk(root string, fn fs.WalkDirFunc) error
	EnsureDirs(path string) error
	CopyFile(src, dst string, perm os.FileMode) error
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
}

// Deployer copies ProjectRoot/loadlib into SystemBase/loadlib.
type Deployer struct {
	fs       fileSystem
	revision func(dir string) (git.Revision, bool, error)
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewDeployer(fs fileSystem, log logrus.FieldLogger) *Deployer {
	if fs == nil {
		panic("fs is required")
	}
	if log == nil {
		panic("log is required")
	}
	return &Deployer{fs: fs, revision: git.HeadRevision, now: time.Now, log: log}
}

// Deploy recursively copies the project's load modules into the region,
// skipping anything matched by loadlib/.deployignore, then writes a manifest.
func (d *Deployer) Deploy(ctx context.Context, req Request) (*Result, error) {
	src := filepath.Join(req.ProjectRoot, LoadDir)
	dst := filepath.Join(req.SystemBase, LoadDir)

	info, err := d.fs.Stat(src)
	if err != nil || !info.IsDir() {
		return nil, &Error{Op: "stat", Path: src, Cause: ErrNoLoadModules}
	}

	ignore, err := git.NewIgnoreMatcher(src, d.fs)
	if err != nil {
		return nil, &Error{Op: "read", Path: filepath.Join(src, git.IgnoreFile), Cause: err}
	}

	if err := d.fs.EnsureDirs(dst); err != nil {
		return nil, &Error{Op: "mkdir", Path: dst, Cause: err}
	}

	res := &Result{Target: dst}
	err = d.fs.Walk(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &Error{Op: "walk", Path: path, Cause: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return &Error{Op: "walk", Path: path, Cause: err}
		}
		if rel == "." {
			return nil
		}
		if rel == git.IgnoreFile || rel == ManifestFile {
			return nil
		}

		if ignore.ShouldIgnore(rel, entry.IsDir()) {
			res.Ignored++
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			if err := d.fs.EnsureDirs(target); err != nil {
				return &Error{Op: "mkdir", Path: target, Cause: err}
			}
			return nil
		}

		fi, err := entry.Info()
		if err != nil {
			return &Error{Op: "stat", Path: path, Cause: err}
		}
		if err := d.fs.CopyFile(path, target, fi.Mode().Perm()); err != nil {
			return &Error{Op: "copy", Path: path, Cause: err}
		}
		res.Files = append(res.Files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	manifest := Manifest{
		SystemBase: req.SystemBase,
		Platform:   string(req.Platform),
		Is64Bit:    bitness(req.Is64Bit),
		DeployedAt: d.now().UTC(),
		Files:      res.Files,
	}
	if manifest.Files == nil {
		manifest.Files = []string{}
	}
	if rev, ok, err := d.revision(req.ProjectRoot); err != nil {
		d.log.WithError(err).Warn("could not read source revision")
	} else if ok {
		manifest.Revision = &rev
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, &Error{Op: "encode", Path: ManifestFile, Cause: err}
	}
	res.Manifest = filepath.Join(dst, ManifestFile)
	if err := d.fs.WriteFileAtomic(res.Manifest, data, 0o644); err != nil {
		return nil, &Error{Op: "write", Path: res.Manifest, Cause: err}
	}

	d.log.WithFields(logrus.Fields{
		"files":   len(res.Files),
		"ignored": res.Ignored,
	}).Infof("Deployed %s to %s", src, dst)
	return res, nil
}

func bitness(is64 bool) string {
	if is64 {
		return "true"
	}
	return "false"
}
