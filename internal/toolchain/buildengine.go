package toolchain

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Cyclone1070/mfdeploy/internal/config"
	"github.com/Cyclone1070/mfdeploy/internal/resolve"
)

// EnvAntHome is the build-engine home variable.
const EnvAntHome = "ANT_HOME"

const (
	eclipseAntPrefix = "org.apache.ant_"
	cobdirAntPrefix  = "apache-ant-"
)

// BuildEngineLocator finds the Apache Ant installation used to run build.xml.
type BuildEngineLocator struct {
	fs        FileSystem
	lookupEnv LookupEnv
	log       logrus.FieldLogger
}

func NewBuildEngineLocator(fs FileSystem, lookupEnv LookupEnv, log logrus.FieldLogger) *BuildEngineLocator {
	if fs == nil {
		panic("fs is required")
	}
	if lookupEnv == nil {
		panic("lookupEnv is required")
	}
	if log == nil {
		panic("log is required")
	}
	return &BuildEngineLocator{fs: fs, lookupEnv: lookupEnv, log: log}
}

// Locate resolves ANT_HOME. The first tier that succeeds wins:
//
//  1. "config": ant_home in the options file, verbatim. A null ant_home ends the
//     search unresolved.
//  2. "env": the ANT_HOME variable, verbatim.
//  3. "eclipse-plugins": an org.apache.ant_* bundle in the Eclipse plugins directory.
//  4. "cobdir-ant": an apache-ant-* directory in the installation's Ant directory.
func (l *BuildEngineLocator) Locate(opts config.DeploymentConfig, env Environment, p Platform) resolve.Result {
	if opts.HasAntHome && opts.AntHomeNull {
		l.log.Debug("ant_home is null in the options file")
		return resolve.Result{Tried: []string{"config"}}
	}
	res := l.chain(opts, env, p).Resolve()

	fields := logrus.Fields{"tried": strings.Join(res.Tried, ",")}
	if res.Found {
		l.log.WithFields(fields).Infof("Using %s=%s (from %s)", EnvAntHome, res.Value, res.Source)
	} else {
		l.log.WithFields(fields).Debug("no build engine found")
	}
	return res
}

func (l *BuildEngineLocator) chain(opts config.DeploymentConfig, env Environment, p Platform) resolve.Chain {
	return resolve.Chain{
		resolve.Fixed("config", opts.AntHome, opts.HasAntHome),
		resolve.Env("env", EnvAntHome, l.lookupEnv),
		l.scan("eclipse-plugins", EclipsePluginsDir(env, p), eclipseAntPrefix),
		l.scan("cobdir-ant", CobdirAntDir(env, p), cobdirAntPrefix),
	}
}

// scan succeeds when dir holds an entry starting with prefix. Entries are visited
// in lexical order and the last match wins. The match is joined onto dir itself.
func (l *BuildEngineLocator) scan(name, dir, prefix string) resolve.Strategy {
	return resolve.Strategy{
		Name: name,
		Resolve: func() (string, bool) {
			entries, err := l.fs.ListDir(dir)
			if err != nil {
				l.log.WithError(err).Debugf("cannot scan %s", dir)
				return "", false
			}

			found := ""
			for _, entry := range entries {
				if strings.HasPrefix(entry, prefix) {
					found = entry
				}
			}
			if found == "" {
				return "", false
			}
			return filepath.Join(dir, found), true
		},
	}
}

// EclipsePluginsDir is where the bundled Eclipse keeps its plugins.
func EclipsePluginsDir(env Environment, p Platform) string {
	if p.IsWindows() {
		return filepath.Join(env.SecondaryRoot, "eclipse", "eclipse", "plugins")
	}
	return filepath.Join(env.SecondaryRoot, "eclipse", "plugins")
}

// CobdirAntDir is where the installation ships a standalone Ant.
func CobdirAntDir(env Environment, p Platform) string {
	if p.IsWindows() {
		return filepath.Join(env.SecondaryRoot, "bin", "ant")
	}
	return filepath.Join(env.SecondaryRoot, "remotedev", "ant")
}
