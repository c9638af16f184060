package models

import (
	"strings"

	kb "github.com/PizzaHomicide/vidctl/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// helpTopic describes what the help modal shows for the view it was opened from
type helpTopic struct {
	title       string
	description string
	contexts    []kb.ContextName
}

var helpTopics = map[View]helpTopic{
	ViewPlayer: {
		title: "Player",
		description: "Nothing is started until you press play.  Once the video has loaded the controls show the " +
			"current position, how much has been played and buffered, and the quality being streamed.\n\n" +
			"Seeking is exact and pauses playback until the engine has settled on the new position.  If the stream " +
			"stalls to buffer, playback resumes on its own unless you paused it.",
		contexts: []kb.ContextName{kb.ContextPlayer},
	},
	ViewQualitySelect: {
		title: "Quality Selection",
		description: "Lists the renditions the engine reported for this video.  Selecting one caps the bitrate " +
			"the engine will stream.  Automatic selection lets the engine decide.",
		contexts: []kb.ContextName{kb.ContextQualitySelect, kb.ContextSearchMode},
	},
	ViewSeekPrompt: {
		title: "Go To Time",
		description: "Enter a time to jump to, either as seconds (90) or minutes and seconds (1:30).  Times past " +
			"the end of the video are clamped to the end.",
		contexts: []kb.ContextName{kb.ContextSeekPrompt},
	},
}

var contextHeadings = map[kb.ContextName]string{
	kb.ContextGlobal:        "Everywhere",
	kb.ContextPlayer:        "Player",
	kb.ContextQualitySelect: "Quality list",
	kb.ContextSearchMode:    "While filtering",
	kb.ContextSeekPrompt:    "Go to time",
}

// HelpModel is a scrollable modal listing the keys for the view it was opened from
type HelpModel struct {
	width, height int
	topic         helpTopic
	viewport      viewport.Model
}

// NewHelpModel creates the help modal for the view the user was looking at
func NewHelpModel(context View) *HelpModel {
	topic, ok := helpTopics[context]
	if !ok {
		topic = helpTopic{title: "General", description: "vidctl controls an external video player from the terminal."}
	}
	return &HelpModel{
		topic:    topic,
		viewport: viewport.New(0, 0),
	}
}

func (m *HelpModel) ViewType() View {
	return ViewHelp
}

func (m *HelpModel) Init() tea.Cmd {
	if m.width > 0 && m.height > 0 {
		m.viewport.SetContent(m.content())
	}
	return nil
}

func (m *HelpModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
		}
	}
	return m, cmd
}

func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Borders, header and footer
	m.viewport.Width = max(width-4, 1)
	m.viewport.Height = max(height-10, 1)
	m.viewport.SetContent(m.content())
	m.viewport.GotoTop()
}

func (m *HelpModel) View() string {
	footer := styles.CenteredText(m.width,
		styles.Info.Render("↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC: Return"))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Header(m.width, "Help: "+m.topic.title),
		"",
		styles.ContentBox(m.width-2, m.viewport.View(), 1),
		"",
		footer,
	)
}

func (m *HelpModel) content() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(m.topic.title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(max(m.viewport.Width-2, 20)).Render(m.topic.description))
	b.WriteString("\n\n")

	// Global keys are listed once, not again under each context
	global := kb.ContextBindings[kb.ContextGlobal]
	globalActions := lo.Map(global, func(binding kb.Binding, _ int) kb.Action { return binding.Action })

	b.WriteString(keySection(contextHeadings[kb.ContextGlobal], global))
	for _, name := range m.topic.contexts {
		bindings := kb.ContextBindings[name]
		if name != kb.ContextSearchMode {
			bindings = lo.Reject(bindings, func(binding kb.Binding, _ int) bool {
				return lo.Contains(globalActions, binding.Action)
			})
		}
		b.WriteString("\n")
		b.WriteString(keySection(contextHeadings[name], bindings))
	}
	return b.String()
}

// keySection renders bindings as a two column table with the keys right aligned
func keySection(heading string, bindings []kb.Binding) string {
	if len(bindings) == 0 {
		return ""
	}

	keys := lo.Map(bindings, func(b kb.Binding, _ int) string { return bindingKeys(b) })
	width := lo.Max(lo.Map(keys, func(k string, _ int) int { return lipgloss.Width(k) }))
	keyStyle := styles.Key.Width(width).Align(lipgloss.Right)

	lines := make([]string, 0, len(bindings)+1)
	lines = append(lines, styles.Emphasis.Render(heading))
	for i, binding := range bindings {
		lines = append(lines, "  "+keyStyle.Render(keys[i])+"  "+binding.KeyMap.Help)
	}
	return strings.Join(lines, "\n") + "\n"
}

func bindingKeys(binding kb.Binding) string {
	keys := kb.DisplayKey(binding.KeyMap.Primary)
	if binding.KeyMap.Secondary != "" {
		keys += " or " + kb.DisplayKey(binding.KeyMap.Secondary)
	}
	return keys
}
