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
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PlayerModel renders the playback session and turns key presses into intents
type PlayerModel struct {
	width, height int
	title         string
	seekStep      float64
	state         playback.ViewState
	controller    Controller

	loader   *LoadingModel
	spinner  spinner.Model
	played   progress.Model
	buffered progress.Model
}

// NewPlayerModel creates the player view for a video titled title
func NewPlayerModel(title string, seekStep float64, controller Controller, initial playback.ViewState) *PlayerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = styles.Spinner

	return &PlayerModel{
		title:      title,
		seekStep:   seekStep,
		state:      initial,
		controller: controller,
		loader:     NewLoadingModel("Loading video...").WithContextInfo(title),
		spinner:    s,
		played:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		buffered:   progress.New(progress.WithSolidFill("#555555"), progress.WithoutPercentage()),
	}
}

func (m *PlayerModel) ViewType() View {
	return ViewPlayer
}

func (m *PlayerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loader.Init())
}

// SetState replaces the displayed read-model
func (m *PlayerModel) SetState(state playback.ViewState) {
	m.state = state
}

func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if msg.ID == m.spinner.ID() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		_, cmd := m.loader.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *PlayerModel) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	action := kb.GetActionByKey(msg, kb.ContextPlayer)
	if action == "" {
		return nil
	}

	// Before playback is requested the only thing to do is start it
	if m.state.ShowPlayButton() && action != kb.ActionPlay && action != kb.ActionTogglePlay {
		return Handled("player:idle")
	}

	log.Debug("Player action", "action", action)
	switch action {
	case kb.ActionPlay:
		m.controller.RequestPlay()
		return Handled("player:play")
	case kb.ActionTogglePlay:
		if m.state.ShowPlayButton() {
			m.controller.RequestPlay()
		} else {
			m.controller.TogglePlay()
		}
		return Handled("player:toggle_play")
	case kb.ActionSeekBackward:
		m.controller.SeekBackward(m.seekStep)
		return Handled("player:seek_backward")
	case kb.ActionSeekForward:
		m.controller.SeekForward(m.seekStep)
		return Handled("player:seek_forward")
	case kb.ActionToggleControls:
		m.controller.ToggleControls()
		return Handled("player:toggle_controls")
	case kb.ActionEnterPIP:
		m.controller.EnterPictureInPicture()
		return Handled("player:pip")
	case kb.ActionOpenSeekPrompt:
		return openModal(ViewSeekPrompt)
	case kb.ActionOpenQualitySelect:
		return openModal(ViewQualitySelect)
	}
	return nil
}

func openModal(view View) tea.Cmd {
	return func() tea.Msg {
		return OpenModalMsg{Modal: view}
	}
}

func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.loader.Resize(width, height-2)

	barWidth := max(width-12, 10)
	m.played.Width = barWidth
	m.buffered.Width = barWidth
}

func (m *PlayerModel) View() string {
	if m.state.AutoPIP {
		return m.minimalView()
	}

	header := styles.Header(m.width, util.TruncateString(m.title, max(m.width-4, 10)))

	switch {
	case m.state.ShowPlayButton():
		body := styles.Playing.Render("▶") + "  " + styles.Emphasis.Render("Press enter to play")
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.CenteredView(m.width, m.height-2, body))
	case m.state.ShowLoader():
		return lipgloss.JoinVertical(lipgloss.Left, header, m.loader.View())
	case !m.state.ShowControls():
		hint := components.KeyBindingsBar(m.width, components.FromActions(kb.ContextPlayer, kb.ActionToggleControls))
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.CenteredView(m.width, m.height-2, m.statusLine()), hint)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		styles.ContentBox(m.width-2, m.controlsView(), 1),
		"",
		components.KeyBindingsBar(m.width, m.footerBindings()),
	)
}

// controlsView is the overlay: time, progress bars, status and stream details
func (m *PlayerModel) controlsView() string {
	var b strings.Builder

	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(styles.Emphasis.Render(m.state.TimeLabel))
	if pct, ok := m.state.Percentage.Get(); ok {
		b.WriteString(styles.Muted.Render(fmt.Sprintf("  (%.0f%%)", pct)))
	}
	b.WriteString("\n")
	b.WriteString("Played   " + m.played.ViewAs(m.state.PlayedFraction) + "\n")
	b.WriteString("Buffered " + m.buffered.ViewAs(m.state.BufferedFraction) + "\n\n")

	quality := "auto"
	if sel, ok := m.state.SelectedQuality.Get(); ok {
		quality = sel.Label()
	}
	b.WriteString(styles.Info.Render(fmt.Sprintf("Quality: %s • Bitrate: %s • Step: %.0fs",
		quality, util.FormatBitrate(m.state.Stream.Bitrate), m.seekStep)))

	if m.state.LastError != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Error.Render("Error: " + m.state.LastError))
	}
	return b.String()
}

func (m *PlayerModel) statusLine() string {
	switch {
	case m.state.Seeking:
		return m.spinner.View() + " " + styles.Emphasis.Render("Seeking...")
	case m.state.Buffering:
		return m.spinner.View() + " " + styles.Emphasis.Render("Buffering...")
	case m.state.IsPlaying():
		return styles.Playing.Render("▶ Playing")
	default:
		return styles.Emphasis.Render("⏸ Paused")
	}
}

func (m *PlayerModel) footerBindings() []components.KeyBinding {
	actions := []kb.Action{
		kb.ActionSeekBackward,
		kb.ActionTogglePlay,
		kb.ActionSeekForward,
		kb.ActionOpenSeekPrompt,
		kb.ActionOpenQualitySelect,
		kb.ActionToggleControls,
	}
	// Offered once loaded.  Engines without PIP report that when asked.
	if m.state.Loaded {
		actions = append(actions, kb.ActionEnterPIP)
	}
	return components.FromActions(kb.ContextPlayer, actions...)
}

// minimalView is the single line shown for picture-in-picture sessions
func (m *PlayerModel) minimalView() string {
	line := fmt.Sprintf("%s %s • %s", m.statusLine(), m.state.TimeLabel, util.TruncateString(m.title, 40))
	if m.state.LastError != "" {
		line += " • " + styles.Error.Render(m.state.LastError)
	}
	return line
}
