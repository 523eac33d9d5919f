package toolchain

import (
	"bufio"
	"bytes"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/Cyclone1070/mfdeploy/internal/resolve"
)

const (
	// EnvCobdir holds the installation root consumed by the Micro Focus tooling.
	EnvCobdir = "COBDIR"

	// CompilerArtifact is the Ant bridge jar shipped only with Enterprise Developer.
	CompilerArtifact = "mfant.jar"

	versionFile = "cobver"
)

// Environment describes a located toolchain installation.
type Environment struct {
	// InstallRoot is the product's bin directory.
	InstallRoot string
	// SecondaryRoot is the parent of InstallRoot and the value of COBDIR.
	SecondaryRoot string
	// CompilerArtifactPath is where mfant.jar is expected under SecondaryRoot/bin.
	CompilerArtifactPath string
	// Source names the strategy that found the installation.
	Source string
	// Version is parsed from SecondaryRoot/etc/cobver; nil when unknown.
	Version *semver.Version
}

// EnvironmentResolver locates the toolchain installation.
type EnvironmentResolver struct {
	fs         FileSystem
	lookupEnv  LookupEnv
	log        logrus.FieldLogger
	candidates func(Platform) []string

	// hostWindows is true when paths on this host use Windows syntax.
	hostWindows bool
}

// NewEnvironmentResolver creates a resolver that searches the default install locations.
func NewEnvironmentResolver(fs FileSystem, lookupEnv LookupEnv, log logrus.FieldLogger) *EnvironmentResolver {
	if fs == nil {
		panic("fs is required")
	}
	if lookupEnv == nil {
		panic("lookupEnv is required")
	}
	if log == nil {
		panic("log is required")
	}
	return &EnvironmentResolver{
		fs:          fs,
		lookupEnv:   lookupEnv,
		log:         log,
		candidates:  defaultInstallDirs,
		hostWindows: runtime.GOOS == "windows",
	}
}

// Resolve returns the installation for platform, or ErrToolchainNotFound.
//
// Search order: an existing $COBDIR/bin, then the platform's default install
// directories in order.
func (r *EnvironmentResolver) Resolve(p Platform) (Environment, error) {
	chain := resolve.Chain{{
		Name: "env",
		Resolve: func() (string, bool) {
			cobdir, ok := r.lookupEnv(EnvCobdir)
			if !ok || cobdir == "" {
				return "", false
			}
			bin := filepath.Join(cobdir, "bin")
			return bin, isDir(r.fs, bin)
		},
	}}
	defaults := r.candidates(p)
	if p.IsWindows() != r.hostWindows {
		// Default locations are written in the platform's own path syntax and
		// cannot be resolved here; only COBDIR is honoured.
		r.log.WithField("platform", p).Debug("default install locations not searched on this host")
		defaults = nil
	}
	for _, dir := range defaults {
		dir := dir
		chain = append(chain, resolve.Strategy{
			Name: "default",
			Resolve: func() (string, bool) {
				return dir, isDir(r.fs, dir)
			},
		})
	}

	res := chain.Resolve()
	if !res.Found {
		r.log.WithField("platform", p).Debugf("searched %d locations", len(res.Tried))
		return Environment{}, ErrToolchainNotFound
	}

	installRoot := filepath.Clean(res.Value)
	cobdir := filepath.Dir(installRoot)
	env := Environment{
		InstallRoot:          installRoot,
		SecondaryRoot:        cobdir,
		CompilerArtifactPath: filepath.Join(cobdir, "bin", CompilerArtifact),
		Source:               res.Source,
		Version:              r.readVersion(cobdir),
	}

	r.log.Infof("%s=%s", EnvCobdir, cobdir)
	if env.Version != nil {
		r.log.Infof("Micro Focus toolchain version %s", env.Version)
	}
	return env, nil
}

// readVersion parses the "cobol vX.Y.ZZ" line of etc/cobver.
func (r *EnvironmentResolver) readVersion(cobdir string) *semver.Version {
	path := filepath.Join(cobdir, "etc", versionFile)
	data, err := r.fs.ReadFile(path)
	if err != nil {
		r.log.WithError(err).Debugf("no version file at %s", path)
		return nil
	}

	v, err := parseCobver(data)
	if err != nil {
		r.log.WithError(err).Debugf("unreadable version file %s", path)
		return nil
	}
	return v
}

func parseCobver(data []byte) (*semver.Version, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || !strings.EqualFold(fields[0], "cobol") {
			continue
		}
		return semver.NewVersion(normalizeVersion(fields[1]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, errNoVersionLine
}

// normalizeVersion turns "v9.0.00" into "9.0.0"; cobver pads the patch level.
func normalizeVersion(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	parts := strings.Split(s, ".")
	for i, part := range parts {
		if n, err := strconv.Atoi(part); err == nil {
			parts[i] = strconv.Itoa(n)
		}
	}
	return strings.Join(parts, ".")
}

func defaultInstallDirs(p Platform) []string {
	if p.IsWindows() {
		return []string{
			`C:\Program Files (x86)\Micro Focus\Enterprise Developer\bin`,
			`C:\Program Files (x86)\Micro Focus\Enterprise Server\bin`,
			`C:\Program Files\Micro Focus\Enterprise Developer\bin`,
			`C:\Program Files\Micro Focus\Enterprise Server\bin`,
		}
	}
	return []string{
		"/opt/microfocus/EnterpriseDeveloper/bin",
		"/opt/microfocus/EnterpriseServer/bin",
	}
}
