package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/PizzaHomicide/vidctl/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingModel is shown while the engine starts and loads the video
type LoadingModel struct {
	width, height int
	message       string
	contextInfo   string
	spinner       spinner.Model
	startTime     time.Time
}

// NewLoadingModel creates a loader showing message
func NewLoadingModel(message string) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &LoadingModel{
		message:   message,
		spinner:   s,
		startTime: time.Now(),
	}
}

// WithContextInfo adds a secondary line under the message
func (m *LoadingModel) WithContextInfo(info string) *LoadingModel {
	m.contextInfo = info
	return m
}

func (m *LoadingModel) ViewType() View {
	return ViewLoading
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *LoadingModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// View renders the spinner box.  After a few seconds the elapsed time is shown so a stuck load is visible.
func (m *LoadingModel) View() string {
	contentWidth := min(max(m.width-20, 40), 80)

	center := lipgloss.NewStyle().Width(contentWidth - 6).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString(center.Render(m.spinner.View() + " " + styles.Emphasis.Render(m.message)))

	info := m.contextInfo
	if elapsed := m.elapsed(); elapsed >= 5*time.Second {
		if info != "" {
			info += "\n"
		}
		info += fmt.Sprintf("Waiting for %s", elapsed.Truncate(time.Second))
	}
	if info != "" {
		b.WriteString("\n\n")
		b.WriteString(center.Inherit(styles.Muted).Render(info))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#9D86FF")).
		Padding(2, 3).
		Width(contentWidth).
		Render(b.String())

	return styles.CenteredView(m.width, m.height, box)
}

func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

func (m *LoadingModel) elapsed() time.Duration {
	return time.Since(m.startTime)
}
