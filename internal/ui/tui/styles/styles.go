package styles

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	accent  = lipgloss.Color("#7D56F4")
	light   = lipgloss.Color("#FAFAFA")
	subtle  = lipgloss.Color("#AAAAAA")
	success = lipgloss.Color("#43BF6D")
	danger  = lipgloss.Color("#FF5F87")
)

var (
	// Text styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(light).
		Background(accent).
		Padding(0, 1)

	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#DEDEDE"))

	Emphasis = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	Muted = lipgloss.NewStyle().
		Foreground(subtle).
		Italic(true)

	Error = lipgloss.NewStyle().
		Foreground(danger).
		Bold(true)

	Playing = lipgloss.NewStyle().
		Foreground(success).
		Bold(true)

	Spinner = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9D86FF")).
		Bold(true)

	Key = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	Item = lipgloss.NewStyle().
		Padding(0, 1)
)

// Layout helpers
func Header(width int, title string) string {
	return Title.
		Width(width).
		Align(lipgloss.Center).
		Render(title)
}

func ContentBox(width int, content string, padding int) string {
	return lipgloss.NewStyle().
		Width(width).
		Padding(padding).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Render(content)
}

func CenteredView(width int, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func CenteredText(width int, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(text)
}
