package report

import "github.com/charmbracelet/lipgloss"

var (
	ColorOK    = lipgloss.Color("42")
	ColorWarn  = lipgloss.Color("214")
	ColorError = lipgloss.Color("196")
	ColorDim   = lipgloss.Color("241")

	TitleStyle = lipgloss.NewStyle().Bold(true)
	LabelStyle = lipgloss.NewStyle().Foreground(ColorDim).Width(12)
	BoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDim).
			Padding(0, 1)
)
