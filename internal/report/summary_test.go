package report

import (
	"errors"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"

	"github.com/Cyclone1070/mfdeploy/internal/build"
	"github.com/Cyclone1070/mfdeploy/internal/deploy"
	"github.com/Cyclone1070/mfdeploy/internal/orchestrator"
	"github.com/Cyclone1070/mfdeploy/internal/resolve"
	"github.com/Cyclone1070/mfdeploy/internal/toolchain"
)

func TestRender_Success(t *testing.T) {
	r := &orchestrator.Report{
		Region:   "region1",
		Platform: toolchain.Linux,
		Environment: toolchain.Environment{
			SecondaryRoot: "/opt/mf",
			Version:       semver.MustParse("9.0.0"),
		},
		Selection: toolchain.Selection{Product: toolchain.FullToolchain, Requested: toolchain.FullToolchain},
		Engine:    resolve.Result{Value: "/ant", Source: "env", Found: true, Tried: []string{"config", "env"}},
		Built:     true,
		Deployed:  true,
		Deploy:    &deploy.Result{Target: "/srv/regions/region1/system/loadlib", Files: []string{"A.so", "B.so"}},
	}

	out := Render(r, nil)

	assert.Contains(t, out, "Region region1")
	assert.Contains(t, out, "/opt/mf (v9.0.0)")
	assert.Contains(t, out, "Micro Focus Enterprise Developer")
	assert.Contains(t, out, "/ant (env)")
	assert.Contains(t, out, "2 files to /srv/regions/region1/system/loadlib")
	assert.NotContains(t, out, "skipped")
}

func TestRender_Downgraded(t *testing.T) {
	r := &orchestrator.Report{
		Region:    "region1",
		Platform:  toolchain.Linux,
		Selection: toolchain.Selection{Product: toolchain.RuntimeOnly, Requested: toolchain.FullToolchain},
		Deployed:  true,
	}

	out := Render(r, nil)

	assert.Contains(t, out, "Micro Focus Enterprise Server (requested ED)")
	assert.Contains(t, out, "skipped")
	assert.NotContains(t, out, "ANT_HOME")
}

func TestRender_EngineMissing(t *testing.T) {
	r := &orchestrator.Report{
		Region:    "region1",
		Selection: toolchain.Selection{Product: toolchain.FullToolchain, Requested: toolchain.FullToolchain},
		Engine:    resolve.Result{Tried: []string{"config", "env", "eclipse-plugins", "cobdir-ant"}},
	}

	assert.Contains(t, Render(r, nil), "not found")
}

func TestRender_Failure(t *testing.T) {
	r := &orchestrator.Report{Region: "region1"}
	err := &orchestrator.RunError{Category: orchestrator.CategoryToolchain, Err: toolchain.ErrToolchainNotFound}

	out := Render(r, err)

	assert.Contains(t, out, "[toolchain] COBOL environment not found")
}

func TestRender_PlainError(t *testing.T) {
	assert.Contains(t, Render(&orchestrator.Report{Region: "r"}, errors.New("boom")), "boom")
}

func TestRender_Nil(t *testing.T) {
	assert.Empty(t, Render(nil, nil))
}

func TestRender_BuildStartFailure(t *testing.T) {
	r := &orchestrator.Report{
		Region:    "region1",
		Selection: toolchain.Selection{Product: toolchain.FullToolchain, Requested: toolchain.FullToolchain},
		Engine:    resolve.Result{Value: "/ant", Source: "env", Found: true, Tried: []string{"config", "env"}},
	}
	err := &orchestrator.RunError{
		Category: orchestrator.CategoryBuild,
		Err:      &build.Error{Descriptor: "build.xml", ExitCode: -1, Cause: errors.New("exec: not found")},
	}

	out := Render(r, err)

	assert.Contains(t, out, "✘ failed")
	assert.Contains(t, out, "skipped")
}

func TestRender_DeployFailure(t *testing.T) {
	r := &orchestrator.Report{Region: "region1", Built: true}
	err := &orchestrator.RunError{Category: orchestrator.CategoryDeploy, Err: errors.New("disk full")}

	out := Render(r, err)

	assert.Contains(t, out, "✔ done")
	assert.Contains(t, out, "✘ failed")
	assert.NotContains(t, out, "skipped")
}
