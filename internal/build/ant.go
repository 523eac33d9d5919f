// Package build runs the application's Ant build against the located toolchain.
package build

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Cyclone1070/mfdeploy/internal/config"
	"github.com/Cyclone1070/mfdeploy/internal/service/executor"
	"github.com/Cyclone1070/mfdeploy/internal/toolchain"
)

// Request describes one build.
type Request struct {
	// Descriptor is the build.xml to run.
	Descriptor string
	SourceDir  string
	OutputDir  string
	// EngineHome is ANT_HOME.
	EngineHome string
	FullBuild  bool
	// Bitness is "true" for 64-bit targets and "false" otherwise; Ant receives it as text.
	Bitness   string
	Toolchain toolchain.Context
}

// Result summarises a finished build.
type Result struct {
	ExitCode  int
	Duration  time.Duration
	Tail      []string
	Truncated bool
}

// commandExecutor runs a subprocess to completion.
type commandExecutor interface {
	Run(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}

// AntInvoker builds applications by running Ant with the Micro Focus bridge on its classpath.
type AntInvoker struct {
	exec    commandExecutor
	cfg     config.BuildConfig
	environ func() []string
	log     logrus.FieldLogger
}

func NewAntInvoker(exec commandExecutor, cfg *config.Config, log logrus.FieldLogger) *AntInvoker {
	if exec == nil {
		panic("exec is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if log == nil {
		panic("log is required")
	}
	return &AntInvoker{exec: exec, cfg: cfg.Build, environ: os.Environ, log: log}
}

// Command returns the argv used for req.
func (a *AntInvoker) Command(req Request) []string {
	launcher := "ant"
	if req.Toolchain.Platform.IsWindows() {
		launcher = "ant.bat"
	}
	return []string{
		filepath.Join(req.EngineHome, "bin", launcher),
		"-lib", req.Toolchain.Env.CompilerArtifactPath,
		"-buildfile", req.Descriptor,
		"-Dsource.dir=" + req.SourceDir,
		"-Dload.dir=" + req.OutputDir,
		"-Dfull.build=" + strconv.FormatBool(req.FullBuild),
		"-Dset64bit=" + req.Bitness,
	}
}

// Build runs Ant and blocks until it exits. Any failure, including a non-zero
// exit status, is returned as *Error; a nil error means the build succeeded.
func (a *AntInvoker) Build(ctx context.Context, req Request) (*Result, error) {
	command := a.Command(req)
	env := req.Toolchain.Environ(a.environ())
	timeout := time.Duration(a.cfg.TimeoutSeconds) * time.Second

	log := a.log.WithFields(logrus.Fields{
		"descriptor": req.Descriptor,
		"ant_home":   req.EngineHome,
	})
	log.Debugf("running %s", strings.Join(command, " "))

	res, err := a.exec.Run(ctx, command, filepath.Dir(req.Descriptor), env, timeout)
	if res == nil {
		return nil, &Error{Descriptor: req.Descriptor, ExitCode: -1, Cause: err}
	}

	result := &Result{
		ExitCode:  res.ExitCode,
		Duration:  res.Duration,
		Tail:      tail(res.Stdout+"\n"+res.Stderr, a.cfg.OutputTailLines),
		Truncated: res.Truncated,
	}

	for _, line := range splitLines(res.Stdout) {
		log.Debug(line)
	}

	if err != nil {
		for _, line := range result.Tail {
			log.Error(line)
		}
		return result, &Error{Descriptor: req.Descriptor, ExitCode: res.ExitCode, Tail: result.Tail, Cause: err}
	}

	log.WithField("duration", res.Duration.Round(time.Millisecond)).Info("Build completed")
	return result, nil
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) []string {
	if n <= 0 {
		return nil
	}
	var lines []string
	for _, line := range splitLines(s) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
