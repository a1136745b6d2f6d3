package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#005577", Dark: "#00aadd"}

	titleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
		Bold(true).
		Margin(1, 0, 2, 0).
		Align(lipgloss.Center)

	menuItemStyle = lipgloss.NewStyle().
		Padding(0, 2).
		Margin(0, 1).
		Foreground(lipgloss.AdaptiveColor{Light: "#262626", Dark: "#d9d9d9"})

	selectedMenuItemStyle = menuItemStyle.Copy().
		Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}).
		Background(accent).
		Bold(true)

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#a8a8a8"}).
		Margin(2, 0, 0, 0)

	formStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2).
		Margin(1, 0)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#859900", Dark: "#50fa7b"}).
		Bold(true)

	progressStyle = lipgloss.NewStyle().
		Margin(1, 0)

	successStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#859900", Dark: "#50fa7b"}).
		Bold(true)

	warningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#b58900", Dark: "#f1fa8c"}).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#dc322f", Dark: "#ff5555"}).
		Bold(true)
)

// adaptiveStyles are the styles whose width follows the terminal.
type adaptiveStyles struct {
	title lipgloss.Style
	form  lipgloss.Style
	help  lipgloss.Style
}

func newAdaptiveStyles(width int) adaptiveStyles {
	if width <= 0 {
		return adaptiveStyles{title: titleStyle, form: formStyle, help: helpStyle}
	}
	maxWidth := width - 4
	return adaptiveStyles{
		title: titleStyle.Copy().Width(maxWidth),
		form:  formStyle.Copy().Width(maxWidth),
		help:  helpStyle.Copy().Width(maxWidth),
	}
}

// place centers content horizontally once the terminal size is known.
func place(width, height int, vertical lipgloss.Position, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, vertical, content)
}
