package models

import (
	"fmt"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/vidctl/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SeekPromptModel asks for a time to seek to, as seconds or m:ss
type SeekPromptModel struct {
	width, height int
	input         textinput.Model
	duration      float64
	err           error
}

// NewSeekPromptModel creates a focused prompt.  duration is shown as a hint when known.
func NewSeekPromptModel(duration float64) *SeekPromptModel {
	input := textinput.New()
	input.Placeholder = "1:30"
	input.CharLimit = 12
	input.Width = 12
	input.Focus()

	return &SeekPromptModel{input: input, duration: duration}
}

func (m *SeekPromptModel) ViewType() View {
	return ViewSeekPrompt
}

func (m *SeekPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SeekPromptModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && kb.GetActionByKey(key, kb.ContextSeekPrompt) == kb.ActionSubmit {
		seconds, err := playback.ParseSeekTime(m.input.Value())
		if err != nil {
			// Nothing is issued for input that does not parse
			log.Debug("Invalid seek time entered", "input", m.input.Value(), "error", err)
			m.err = err
			return m, Handled("seek_prompt:invalid")
		}
		return m, func() tea.Msg {
			return SeekSubmittedMsg{Seconds: seconds}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		m.err = nil
	}
	return m, cmd
}

func (m *SeekPromptModel) View() string {
	prompt := styles.Emphasis.Render("Go to: ") + m.input.View()
	if m.duration > 0 {
		prompt += styles.Muted.Render(fmt.Sprintf("  of %s", playback.FormatTime(m.duration)))
	}
	if m.err != nil {
		prompt += "\n\n" + styles.Error.Render("Enter seconds (90) or minutes:seconds (1:30)")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7D56F4")).
		Padding(1, 3).
		Render(prompt)

	footer := components.KeyBindingsBar(m.width, components.FromActions(kb.ContextSeekPrompt, kb.ActionSubmit, kb.ActionBack))
	return lipgloss.JoinVertical(lipgloss.Left, styles.CenteredView(m.width, m.height-2, box), footer)
}

func (m *SeekPromptModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Err is the parse error of the last submission, if any
func (m *SeekPromptModel) Err() error {
	return m.err
}
