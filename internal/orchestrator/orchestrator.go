// Package orchestrator drives one build-then-deploy run against a region.
package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Cyclone1070/mfdeploy/internal/build"
	"github.com/Cyclone1070/mfdeploy/internal/config"
	"github.com/Cyclone1070/mfdeploy/internal/deploy"
	"github.com/Cyclone1070/mfdeploy/internal/resolve"
	"github.com/Cyclone1070/mfdeploy/internal/toolchain"
)

type environmentResolver interface {
	Resolve(p toolchain.Platform) (toolchain.Environment, error)
}

type productSelector interface {
	Select(requested string, env toolchain.Environment, p toolchain.Platform) (toolchain.Selection, error)
}

type engineLocator interface {
	Locate(opts config.DeploymentConfig, env toolchain.Environment, p toolchain.Platform) resolve.Result
}

type builder interface {
	Build(ctx context.Context, req build.Request) (*build.Result, error)
}

type deployer interface {
	Deploy(ctx context.Context, req deploy.Request) (*deploy.Result, error)
}

// Options are the per-run inputs.
type Options struct {
	Deployment config.DeploymentConfig
	Platform   toolchain.Platform
	// WorkDir is the directory the tool was started from.
	WorkDir string
}

// Report describes what a run did. Fields for stages that never ran stay zero.
type Report struct {
	Region      string
	Platform    toolchain.Platform
	Environment toolchain.Environment
	Selection   toolchain.Selection
	Engine      resolve.Result
	Paths       Paths
	Built       bool
	Deployed    bool
	Build       *build.Result
	Deploy      *deploy.Result
	Duration    time.Duration
}

// Orchestrator wires the toolchain stages, the build and the deploy together.
type Orchestrator struct {
	resolver environmentResolver
	selector productSelector
	locator  engineLocator
	builder  builder
	deployer deployer
	log      logrus.FieldLogger
}

// Deps groups the stages an Orchestrator runs.
type Deps struct {
	Resolver environmentResolver
	Selector productSelector
	Locator  engineLocator
	Builder  builder
	Deployer deployer
}

func New(deps Deps, log logrus.FieldLogger) *Orchestrator {
	if deps.Resolver == nil {
		panic("resolver is required")
	}
	if deps.Selector == nil {
		panic("selector is required")
	}
	if deps.Locator == nil {
		panic("locator is required")
	}
	if deps.Builder == nil {
		panic("builder is required")
	}
	if deps.Deployer == nil {
		panic("deployer is required")
	}
	if log == nil {
		panic("log is required")
	}
	return &Orchestrator{
		resolver: deps.Resolver,
		selector: deps.Selector,
		locator:  deps.Locator,
		builder:  deps.Builder,
		deployer: deps.Deployer,
		log:      log,
	}
}

// Run executes one pipeline. The returned Report is never nil. A non-nil error
// is always a *RunError.
//
// A full toolchain builds and then deploys; deploy is skipped when the build
// fails. A runtime-only product deploys the existing load modules without
// building. When no build engine can be found the run logs an error and stops
// without building or deploying, which is not a fatal outcome.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	cfg := opts.Deployment
	log := o.log.WithField("region", cfg.RegionName)

	report := &Report{
		Region:   cfg.RegionName,
		Platform: opts.Platform,
		Paths:    NewPaths(opts.WorkDir, cfg),
	}
	defer func() { report.Duration = time.Since(start) }()

	env, err := o.resolver.Resolve(opts.Platform)
	if err != nil {
		log.Error("COBOL environment not found")
		return report, &RunError{Category: CategoryToolchain, Err: err}
	}
	report.Environment = env

	sel, err := o.selector.Select(cfg.Product, env, opts.Platform)
	if err != nil {
		return report, &RunError{Category: CategoryProduct, Err: err}
	}
	report.Selection = sel
	tc := toolchain.NewContext(opts.Platform, env, sel)

	if sel.Product == toolchain.RuntimeOnly {
		if err := o.deploy(ctx, report, cfg); err != nil {
			return report, err
		}
		log.Infof("Application deployed to region %s", cfg.RegionName)
		return report, nil
	}

	report.Engine = o.locator.Locate(cfg, env, opts.Platform)
	if !report.Engine.Found {
		log.Error("Error: ANT_HOME not set")
		return report, nil
	}
	tc = tc.WithAntHome(report.Engine.Value)

	log.Info("Application being built")
	res, err := o.builder.Build(ctx, build.Request{
		Descriptor: report.Paths.BuildFile,
		SourceDir:  report.Paths.SourceDir,
		OutputDir:  report.Paths.LoadDir,
		EngineHome: report.Engine.Value,
		FullBuild:  true,
		Bitness:    cfg.BitnessToken(),
		Toolchain:  tc,
	})
	report.Build = res
	if err != nil {
		log.WithError(err).Error("Build failed, application not deployed")
		return report, &RunError{Category: CategoryBuild, Err: err}
	}
	report.Built = true

	if err := o.deploy(ctx, report, cfg); err != nil {
		return report, err
	}
	log.Infof("Application has been built and deployed to region %s", cfg.RegionName)
	return report, nil
}

func (o *Orchestrator) deploy(ctx context.Context, report *Report, cfg config.DeploymentConfig) error {
	res, err := o.deployer.Deploy(ctx, deploy.Request{
		ProjectRoot: report.Paths.ProjectRoot,
		SystemBase:  report.Paths.SystemBase,
		Platform:    report.Platform,
		Is64Bit:     cfg.Is64Bit,
	})
	if err != nil {
		o.log.WithField("region", cfg.RegionName).WithError(err).Error("Deploy failed")
		return &RunError{Category: CategoryDeploy, Err: err}
	}
	report.Deploy = res
	report.Deployed = true
	return nil
}
