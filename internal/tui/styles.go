package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    = lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#8c8fa1", Dark: "#7f849c"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
	colorWarn    = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#bcc0cc", Dark: "#45475a"}
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	titleStyle  = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)

	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	itemStyle     = lipgloss.NewStyle().Foreground(colorText)

	statusStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError)

	keyStyle      = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorMuted)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWarn).
			Padding(1, 2)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)
