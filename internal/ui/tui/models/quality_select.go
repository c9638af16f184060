package models

import (
	"fmt"
	"strings"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/vidctl/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/styles"
	"github.com/PizzaHomicide/vidctl/internal/ui/tui/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/mo"
)

// QualitySelectModel is the modal listing the quality options the engine advertised
type QualitySelectModel struct {
	width, height int
	options       []playback.QualityOption
	filtered      []playback.QualityOption
	selected      mo.Option[playback.QualityOption]
	cursor        int
	searchInput   textinput.Model
	searchMode    bool
}

// NewQualitySelectModel creates the modal with the cursor on the current selection
func NewQualitySelectModel(options []playback.QualityOption, selected mo.Option[playback.QualityOption]) *QualitySelectModel {
	input := textinput.New()
	input.Placeholder = "Filter qualities..."
	input.Width = 30

	m := &QualitySelectModel{
		options:     options,
		filtered:    options,
		selected:    selected,
		searchInput: input,
	}
	if sel, ok := selected.Get(); ok {
		for i, opt := range options {
			if opt == sel {
				m.cursor = i
			}
		}
	}
	return m
}

func (m *QualitySelectModel) ViewType() View {
	return ViewQualitySelect
}

func (m *QualitySelectModel) Init() tea.Cmd {
	return nil
}

func (m *QualitySelectModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.searchMode {
			return m, m.handleSearchModeKeyMsg(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *QualitySelectModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextQualitySelect) {
	case kb.ActionSelectQuality:
		if m.cursor < 0 || m.cursor >= len(m.filtered) {
			log.Debug("Quality selected with nothing under the cursor")
			return Handled("quality_select:empty")
		}
		option := m.filtered[m.cursor]
		return func() tea.Msg {
			return QualitySelectedMsg{Option: mo.Some(option)}
		}
	case kb.ActionSelectAutoQuality:
		return func() tea.Msg {
			return QualitySelectedMsg{Option: mo.None[playback.QualityOption]()}
		}
	case kb.ActionEnableSearch:
		m.searchMode = true
		m.searchInput.Focus()
		return Handled("search:enable")
	case kb.ActionMoveDown:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return Handled("cursor_move:down")
	case kb.ActionMoveUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return Handled("cursor_move:up")
	case kb.ActionMoveTop, kb.ActionPageUp:
		m.cursor = 0
		return Handled("cursor_move:top")
	case kb.ActionMoveBottom, kb.ActionPageDown:
		m.cursor = max(len(m.filtered)-1, 0)
		return Handled("cursor_move:bottom")
	}
	return nil
}

func (m *QualitySelectModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		m.searchMode = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.applyFilter()
		return Handled("search:exit")
	case kb.ActionSubmit:
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		return Handled("search:apply")
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return cmd
}

// applyFilter fuzzy matches the query against labels and bitrates
func (m *QualitySelectModel) applyFilter() {
	query := m.searchInput.Value()
	if query == "" {
		m.filtered = m.options
	} else {
		var filtered []playback.QualityOption
		for _, opt := range m.options {
			if fuzzy.MatchFold(query, opt.Label()) || fuzzy.MatchFold(query, util.FormatBitrate(opt.Bitrate)) {
				filtered = append(filtered, opt)
			}
		}
		m.filtered = filtered
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(len(m.filtered)-1, 0)
	}
}

// SearchMode reports whether key presses currently go to the filter input
func (m *QualitySelectModel) SearchMode() bool {
	return m.searchMode
}

func (m *QualitySelectModel) View() string {
	header := styles.Header(m.width, "Quality Selection")

	content := m.renderOptions()
	if m.searchMode {
		searchPrompt := styles.Title.Render("Search: ") + m.searchInput.View()
		content = lipgloss.JoinVertical(lipgloss.Left, searchPrompt, content)
	}

	footer := components.KeyBindingsBar(m.width, append(
		components.FromActions(kb.ContextQualitySelect,
			kb.ActionSelectQuality, kb.ActionSelectAutoQuality, kb.ActionEnableSearch),
		components.KeyBinding{Key: "esc", Desc: "Cancel"},
	))

	return fmt.Sprintf("%s\n\n%s\n\n%s", header, content, footer)
}

func (m *QualitySelectModel) renderOptions() string {
	if len(m.options) == 0 {
		return styles.ContentBox(m.width-2, styles.CenteredText(m.width-6, "The engine has not reported any qualities yet"), 1)
	}
	if len(m.filtered) == 0 {
		return styles.ContentBox(m.width-2, styles.CenteredText(m.width-6, "No qualities match your filter"), 1)
	}

	itemWidth := max(m.width-6, 20)
	var b strings.Builder
	for i, opt := range m.filtered {
		marker := "  "
		if sel, ok := m.selected.Get(); ok && sel == opt {
			marker = "✓ "
		}
		line := fmt.Sprintf("%s%-8s %5dx%-5d %12s", marker, opt.Label(), opt.Width, opt.Height, util.FormatBitrate(opt.Bitrate))

		style := styles.Item
		if i == m.cursor {
			style = styles.Selected
		}
		b.WriteString(style.Width(itemWidth).Render(line))
		b.WriteString("\n")
	}

	auto := "Automatic selection is active"
	if m.selected.IsPresent() {
		auto = "Press a to return to automatic selection"
	}
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render(auto))

	return styles.ContentBox(m.width-2, b.String(), 1)
}

func (m *QualitySelectModel) Resize(width, height int) {
	m.width = width
	m.height = height
}
