// Package report renders a run summary for the terminal.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cyclone1070/mfdeploy/internal/orchestrator"
)

// Render summarises r. err is the run's outcome and may be nil.
func Render(r *orchestrator.Report, err error) string {
	if r == nil {
		return ""
	}

	var lines []string
	lines = append(lines, TitleStyle.Render(fmt.Sprintf("Region %s", r.Region)))
	lines = append(lines, "")

	lines = append(lines, row("Platform", string(r.Platform)))
	if r.Environment.SecondaryRoot != "" {
		cobdir := r.Environment.SecondaryRoot
		if r.Environment.Version != nil {
			cobdir = fmt.Sprintf("%s (v%s)", cobdir, r.Environment.Version)
		}
		lines = append(lines, row("COBDIR", cobdir))
	}
	if r.Selection.Product != "" {
		product := r.Selection.Product.String()
		if r.Selection.Downgraded() {
			product = lipgloss.NewStyle().Foreground(ColorWarn).
				Render(fmt.Sprintf("%s (requested %s)", product, string(r.Selection.Requested)))
		}
		lines = append(lines, row("Product", product))
	}
	if len(r.Engine.Tried) > 0 {
		engine := lipgloss.NewStyle().Foreground(ColorError).Render("not found")
		if r.Engine.Found {
			engine = fmt.Sprintf("%s (%s)", r.Engine.Value, r.Engine.Source)
		}
		lines = append(lines, row("ANT_HOME", engine))
	}

	var runErr *orchestrator.RunError
	categorized := errors.As(err, &runErr)
	lines = append(lines, row("Build", stage(r.Built, categorized && runErr.Category == orchestrator.CategoryBuild)))
	deployed := stage(r.Deployed, categorized && runErr.Category == orchestrator.CategoryDeploy)
	if r.Deploy != nil {
		deployed = fmt.Sprintf("%s  %d files to %s", deployed, len(r.Deploy.Files), r.Deploy.Target)
	}
	lines = append(lines, row("Deploy", deployed))

	if err != nil {
		msg := err.Error()
		if categorized {
			msg = fmt.Sprintf("[%s] %v", runErr.Category, runErr.Err)
		}
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorError).Render(msg))
	}

	lines = append(lines, lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("took %s", r.Duration.Round(time.Millisecond))))
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}

func stage(done, failed bool) string {
	switch {
	case done:
		return lipgloss.NewStyle().Foreground(ColorOK).Render("✔ done")
	case failed:
		return lipgloss.NewStyle().Foreground(ColorError).Render("✘ failed")
	default:
		return lipgloss.NewStyle().Foreground(ColorDim).Render("skipped")
	}
}
