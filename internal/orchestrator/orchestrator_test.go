package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/mfdeploy/internal/build"
	"github.com/Cyclone1070/mfdeploy/internal/config"
	"github.com/Cyclone1070/mfdeploy/internal/deploy"
	"github.com/Cyclone1070/mfdeploy/internal/resolve"
	"github.com/Cyclone1070/mfdeploy/internal/toolchain"
)

type fakeResolver struct {
	env   toolchain.Environment
	err   error
	calls int
}

func (f *fakeResolver) Resolve(p toolchain.Platform) (toolchain.Environment, error) {
	f.calls++
	return f.env, f.err
}

type fakeSelector struct {
	sel       toolchain.Selection
	err       error
	requested string
}

func (f *fakeSelector) Select(requested string, env toolchain.Environment, p toolchain.Platform) (toolchain.Selection, error) {
	f.requested = requested
	return f.sel, f.err
}

type fakeLocator struct {
	res   resolve.Result
	calls int
}

func (f *fakeLocator) Locate(opts config.DeploymentConfig, env toolchain.Environment, p toolchain.Platform) resolve.Result {
	f.calls++
	return f.res
}

type fakeBuilder struct {
	err  error
	reqs []build.Request
}

func (f *fakeBuilder) Build(ctx context.Context, req build.Request) (*build.Result, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return &build.Result{ExitCode: 1}, f.err
	}
	return &build.Result{}, nil
}

type fakeDeployer struct {
	err  error
	reqs []deploy.Request
}

func (f *fakeDeployer) Deploy(ctx context.Context, req deploy.Request) (*deploy.Result, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &deploy.Result{Target: filepath.Join(req.SystemBase, deploy.LoadDir)}, nil
}

type harness struct {
	resolver *fakeResolver
	selector *fakeSelector
	locator  *fakeLocator
	builder  *fakeBuilder
	deployer *fakeDeployer
	hook     *test.Hook
	orch     *Orchestrator
}

func newHarness(product toolchain.Product) *harness {
	logger, hook := test.NewNullLogger()
	h := &harness{
		resolver: &fakeResolver{env: toolchain.Environment{
			InstallRoot:          "/opt/mf/bin",
			SecondaryRoot:        "/opt/mf",
			CompilerArtifactPath: "/opt/mf/bin/mfant.jar",
		}},
		selector: &fakeSelector{sel: toolchain.Selection{Product: product, Requested: product, JavaHome: "/jdk"}},
		locator:  &fakeLocator{res: resolve.Result{Value: "/ant", Source: "env", Found: true}},
		builder:  &fakeBuilder{},
		deployer: &fakeDeployer{},
		hook:     hook,
	}
	h.orch = New(Deps{
		Resolver: h.resolver,
		Selector: h.selector,
		Locator:  h.locator,
		Builder:  h.builder,
		Deployer: h.deployer,
	}, logger)
	return h
}

func testOptions(product string) Options {
	return Options{
		Deployment: config.DeploymentConfig{
			RegionName:     "region1",
			RegionLocation: "/srv/regions",
			Is64Bit:        true,
			Product:        product,
		},
		Platform: toolchain.Linux,
		WorkDir:  filepath.Join("/work", "carddemo", "scripts"),
	}
}

func (h *harness) hasMessage(level logrus.Level, msg string) bool {
	for _, e := range h.hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

func TestNewPaths(t *testing.T) {
	p := NewPaths(filepath.Join("/work", "carddemo", "scripts"), config.DeploymentConfig{
		RegionName:     "region1",
		RegionLocation: "/srv/regions",
	})

	assert.Equal(t, filepath.Join("/work", "carddemo"), p.ProjectRoot)
	assert.Equal(t, filepath.Join("/work", "carddemo", "scripts", "build", "build.xml"), p.BuildFile)
	assert.Equal(t, filepath.Join("/work", "carddemo", "app"), p.SourceDir)
	assert.Equal(t, filepath.Join("/work", "carddemo", "loadlib"), p.LoadDir)
	assert.Equal(t, filepath.Join("/srv/regions", "region1", "system"), p.SystemBase)
}

func TestRun_FullToolchain_BuildsThenDeploys(t *testing.T) {
	h := newHarness(toolchain.FullToolchain)

	report, err := h.orch.Run(context.Background(), testOptions("ED"))

	require.NoError(t, err)
	assert.True(t, report.Built)
	assert.True(t, report.Deployed)
	assert.Equal(t, "ED", h.selector.requested)

	require.Len(t, h.builder.reqs, 1)
	req := h.builder.reqs[0]
	assert.Equal(t, report.Paths.BuildFile, req.Descriptor)
	assert.Equal(t, "/ant", req.EngineHome)
	assert.Equal(t, "true", req.Bitness)
	assert.True(t, req.FullBuild)
	assert.Equal(t, "/ant", req.Toolchain.AntHome)
	assert.Equal(t, "/jdk", req.Toolchain.JavaHome)

	require.Len(t, h.deployer.reqs, 1)
	assert.Equal(t, filepath.Join("/srv/regions", "region1", "system"), h.deployer.reqs[0].SystemBase)
	assert.True(t, h.hasMessage(logrus.InfoLevel, "Application has been built and deployed to region region1"))
}

func TestRun_RuntimeOnly_DeploysWithoutBuilding(t *testing.T) {
	h := newHarness(toolchain.RuntimeOnly)

	report, err := h.orch.Run(context.Background(), testOptions("ES"))

	require.NoError(t, err)
	assert.Empty(t, h.builder.reqs)
	assert.Zero(t, h.locator.calls)
	assert.False(t, report.Built)
	assert.True(t, report.Deployed)
	require.Len(t, h.deployer.reqs, 1)
	assert.True(t, h.deployer.reqs[0].Is64Bit)
	assert.True(t, h.hasMessage(logrus.InfoLevel, "Application deployed to region region1"))
}

func TestRun_EngineNotFound_StopsWithoutError(t *testing.T) {
	h := newHarness(toolchain.FullToolchain)
	h.locator.res = resolve.Result{Tried: []string{"config", "env", "eclipse-plugins", "cobdir-ant"}}

	report, err := h.orch.Run(context.Background(), testOptions(""))

	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.Empty(t, h.builder.reqs)
	assert.Empty(t, h.deployer.reqs)
	assert.False(t, report.Engine.Found)
	assert.True(t, h.hasMessage(logrus.ErrorLevel, "Error: ANT_HOME not set"))
}

func TestRun_BuildFailure_SkipsDeploy(t *testing.T) {
	h := newHarness(toolchain.FullToolchain)
	buildErr := &build.Error{Descriptor: "build.xml", ExitCode: 1, Cause: errors.New("exit status 1")}
	h.builder.err = buildErr

	report, err := h.orch.Run(context.Background(), testOptions("ED"))

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, CategoryBuild, runErr.Category)
	assert.ErrorIs(t, err, buildErr)
	assert.Equal(t, 1, ExitCode(err))
	assert.Empty(t, h.deployer.reqs)
	assert.False(t, report.Built)
	assert.False(t, report.Deployed)
	require.NotNil(t, report.Build)
	assert.Equal(t, 1, report.Build.ExitCode)
}

func TestRun_FatalStages(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness)
		category Category
		logged   string
	}{
		{
			name:     "toolchain not found",
			setup:    func(h *harness) { h.resolver.err = toolchain.ErrToolchainNotFound },
			category: CategoryToolchain,
			logged:   "COBOL environment not found",
		},
		{
			name: "invalid product",
			setup: func(h *harness) {
				h.selector.err = &toolchain.InvalidProductError{Value: "XX"}
			},
			category: CategoryProduct,
		},
		{
			name:     "deploy failure",
			setup:    func(h *harness) { h.deployer.err = &deploy.Error{Op: "copy", Path: "x", Cause: errors.New("disk full")} },
			category: CategoryDeploy,
			logged:   "Deploy failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(toolchain.FullToolchain)
			tt.setup(h)

			report, err := h.orch.Run(context.Background(), testOptions("ED"))

			require.NotNil(t, report)
			var runErr *RunError
			require.ErrorAs(t, err, &runErr)
			assert.Equal(t, tt.category, runErr.Category)
			assert.Equal(t, 1, ExitCode(err))
			assert.False(t, report.Deployed)
			if tt.logged != "" {
				assert.True(t, h.hasMessage(logrus.ErrorLevel, tt.logged))
			}
			if tt.category != CategoryDeploy {
				assert.Empty(t, h.builder.reqs)
				assert.Empty(t, h.deployer.reqs)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 1, ExitCode(&RunError{Category: CategoryUsage, Err: errors.New("no args")}))
}
