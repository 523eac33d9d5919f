package orchestrator

import (
	"path/filepath"

	"github.com/Cyclone1070/mfdeploy/internal/config"
	"github.com/Cyclone1070/mfdeploy/internal/deploy"
)

// Paths are the filesystem locations one run works with. The tool is run from a
// scripts directory that sits next to the application's app and loadlib directories.
type Paths struct {
	WorkDir     string
	ProjectRoot string
	BuildFile   string
	SourceDir   string
	LoadDir     string
	SystemBase  string
}

// NewPaths derives the run's locations from the working directory and options.
func NewPaths(workDir string, opts config.DeploymentConfig) Paths {
	root := filepath.Dir(workDir)
	return Paths{
		WorkDir:     workDir,
		ProjectRoot: root,
		BuildFile:   filepath.Join(workDir, "build", "build.xml"),
		SourceDir:   filepath.Join(root, "app"),
		LoadDir:     filepath.Join(root, deploy.LoadDir),
		SystemBase:  filepath.Join(opts.RegionLocation, opts.RegionName, "system"),
	}
}
