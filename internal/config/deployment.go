package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// OptionsExt is appended to the options name given on the command line.
const OptionsExt = ".json"

const (
	keyRegionName     = "region_name"
	keyRegionLocation = "region_location"
	keyIs64Bit        = "is64bit"
	keyProduct        = "product"
	keyAntHome        = "ant_home"
)

// DeploymentConfig is the per-run options file, loaded once and never mutated.
type DeploymentConfig struct {
	RegionName     string `mapstructure:"region_name"`
	RegionLocation string `mapstructure:"region_location"`
	Is64Bit        bool   `mapstructure:"is64bit"`
	Product        string `mapstructure:"product"`
	AntHome        string `mapstructure:"ant_home"`

	// HasAntHome reports whether the ant_home key was present in the file, even as null.
	// Presence, not value, is what gives the explicit setting precedence.
	HasAntHome bool `mapstructure:"-"`
	// AntHomeNull is set when ant_home is present but null. The key still ends the
	// search, leaving the build engine unresolved.
	AntHomeNull bool `mapstructure:"-"`
}

// BitnessToken renders Is64Bit the way the build and deploy tooling expect it.
func (d DeploymentConfig) BitnessToken() string {
	if d.Is64Bit {
		return "true"
	}
	return "false"
}

// OptionsPath returns the location of the named options file under optionsDir.
func OptionsPath(optionsDir, name string) string {
	return filepath.Join(optionsDir, name+OptionsExt)
}

// LoadDeployment reads optionsDir/<name>.json.
// A missing file yields *OptionsNotFoundError listing the files that do exist.
func (l *Loader) LoadDeployment(optionsDir, name string) (DeploymentConfig, error) {
	path := OptionsPath(optionsDir, name)

	info, err := l.fs.Stat(path)
	if err != nil || info.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			return DeploymentConfig{}, &ReadError{Path: path, Cause: err}
		}
		return DeploymentConfig{}, &OptionsNotFoundError{
			Path:      path,
			Available: l.listOptions(optionsDir),
		}
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return DeploymentConfig{}, &ReadError{Path: path, Cause: err}
	}

	return decodeDeployment(path, data)
}

// LoadDeployment is a convenience function using the default loader
func LoadDeployment(optionsDir, name string) (DeploymentConfig, error) {
	return NewLoader().LoadDeployment(optionsDir, name)
}

func decodeDeployment(path string, data []byte) (DeploymentConfig, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return DeploymentConfig{}, &ParseError{Path: path, Cause: err}
	}
	if raw == nil {
		return DeploymentConfig{}, &ValidationError{Path: path, Problems: []string{"options file must contain a JSON object"}}
	}

	if err := validateDeployment(path, raw); err != nil {
		return DeploymentConfig{}, err
	}

	var cfg DeploymentConfig
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return DeploymentConfig{}, &ParseError{Path: path, Cause: err}
	}

	if v, ok := raw[keyAntHome]; ok {
		cfg.HasAntHome = true
		cfg.AntHomeNull = v == nil
	}

	return cfg, nil
}

// listOptions returns the names of regular files in dir, sorted.
// An unreadable directory yields an empty list.
func (l *Loader) listOptions(dir string) []string {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
