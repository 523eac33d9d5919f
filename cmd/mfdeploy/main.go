// Package main provides the mfdeploy command: build a COBOL application with the
// Micro Focus toolchain and deploy its load modules to an Enterprise Server region.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Cyclone1070/mfdeploy/internal/build"
	"github.com/Cyclone1070/mfdeploy/internal/config"
	"github.com/Cyclone1070/mfdeploy/internal/deploy"
	"github.com/Cyclone1070/mfdeploy/internal/orchestrator"
	"github.com/Cyclone1070/mfdeploy/internal/report"
	"github.com/Cyclone1070/mfdeploy/internal/service/executor"
	"github.com/Cyclone1070/mfdeploy/internal/service/fsutil"
	"github.com/Cyclone1070/mfdeploy/internal/toolchain"
)

var errMissingOptions = errors.New("options file name is required")

type pipeline interface {
	Run(ctx context.Context, opts orchestrator.Options) (*orchestrator.Report, error)
}

type optionsLoader interface {
	LoadDeployment(optionsDir, name string) (config.DeploymentConfig, error)
}

// Dependencies holds the components required to run the application.
type Dependencies struct {
	Getwd        func() (string, error)
	LoadSettings func() (*config.Config, error)
	Options      optionsLoader
	NewPipeline  func(settings *config.Config, log logrus.FieldLogger) pipeline
}

func defaultDependencies() Dependencies {
	return Dependencies{
		Getwd:        os.Getwd,
		LoadSettings: config.Load,
		Options:      config.NewLoader(),
		NewPipeline:  newPipeline,
	}
}

func newPipeline(settings *config.Config, log logrus.FieldLogger) pipeline {
	fs := fsutil.NewOSFileSystem()
	return orchestrator.New(orchestrator.Deps{
		Resolver: toolchain.NewEnvironmentResolver(fs, toolchain.OSLookupEnv, log),
		Selector: toolchain.NewProductSelector(fs, toolchain.OSLookupEnv, log),
		Locator:  toolchain.NewBuildEngineLocator(fs, toolchain.OSLookupEnv, log),
		Builder:  build.NewAntInvoker(executor.NewOSCommandExecutor(settings), settings, log),
		Deployer: deploy.NewDeployer(fs, log),
	}, log)
}

type rootFlags struct {
	optionsDir string
	platform   string
	logFile    string
	logLevel   string
	noSummary  bool
}

type app struct {
	deps  Dependencies
	flags rootFlags
}

func newRootCommand(deps Dependencies) *cobra.Command {
	a := &app{deps: deps}
	cmd := &cobra.Command{
		Use:   "mfdeploy <options>",
		Short: "Build a COBOL application and deploy it to a Micro Focus region",
		Long: `mfdeploy reads options/<options>.json, locates the Micro Focus toolchain,
builds the application with Ant when a full toolchain is available and copies
its load modules into the region's system directory.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.flags.optionsDir, "options-dir", "options", "directory holding <options>.json files, relative to the working directory")
	f.StringVar(&a.flags.platform, "platform", "", "toolchain platform (windows, linux, aix, solaris); defaults to the host")
	f.StringVar(&a.flags.logFile, "log-file", "mfdeploy.log", "file the run log is appended to; empty disables it")
	f.StringVar(&a.flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&a.flags.noSummary, "no-summary", false, "do not print the run summary")
	return cmd
}

func (a *app) run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	log, closeLog, err := newLogger(stderr, a.flags.logFile, a.flags.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	if len(args) != 1 || args[0] == "" {
		log.Error("Error: enter the name of a valid options file")
		return &orchestrator.RunError{Category: orchestrator.CategoryUsage, Err: errMissingOptions}
	}

	platform := toolchain.CurrentPlatform()
	if a.flags.platform != "" {
		if platform, err = toolchain.ParsePlatform(a.flags.platform); err != nil {
			log.WithError(err).Error("Invalid platform")
			return &orchestrator.RunError{Category: orchestrator.CategoryUsage, Err: err}
		}
	}

	settings, err := a.deps.LoadSettings()
	if err != nil {
		log.WithError(err).Error("Invalid tool settings")
		return &orchestrator.RunError{Category: orchestrator.CategoryConfig, Err: err}
	}

	wd, err := a.deps.Getwd()
	if err != nil {
		log.WithError(err).Error("Cannot determine working directory")
		return &orchestrator.RunError{Category: orchestrator.CategoryConfig, Err: err}
	}

	optionsDir := a.flags.optionsDir
	if !filepath.IsAbs(optionsDir) {
		optionsDir = filepath.Join(wd, optionsDir)
	}
	opts, err := a.deps.Options.LoadDeployment(optionsDir, args[0])
	if err != nil {
		logOptionsError(log, err)
		return &orchestrator.RunError{Category: orchestrator.CategoryConfig, Err: err}
	}
	log.WithField("platform", platform).Infof("Loaded options %s", args[0])

	rep, err := a.deps.NewPipeline(settings, log).Run(ctx, orchestrator.Options{
		Deployment: opts,
		Platform:   platform,
		WorkDir:    wd,
	})
	if !a.flags.noSummary {
		fmt.Fprintln(stdout, report.Render(rep, err))
	}
	return err
}

func logOptionsError(log logrus.FieldLogger, err error) {
	var notFound *config.OptionsNotFoundError
	if errors.As(err, &notFound) {
		log.Error(notFound.Error())
		log.Error("Valid options are:")
		for _, name := range notFound.Available {
			log.Error("    " + name)
		}
		return
	}
	log.WithError(err).Error("Cannot load options file")
}

// newLogger writes to stderr and, when path is set, appends to path as well.
func newLogger(stderr io.Writer, path, level string) (*logrus.Logger, func(), error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	if path == "" {
		logger.SetOutput(stderr)
		return logger, func() {}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(stderr, file))
	return logger, func() { _ = file.Close() }, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand(defaultDependencies()).ExecuteContext(ctx)
	stop()

	// Run errors have already been logged where they happened.
	var runErr *orchestrator.RunError
	if err != nil && !errors.As(err, &runErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(orchestrator.ExitCode(err))
}
