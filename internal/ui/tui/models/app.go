package models

import (
	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	kb "github.com/PizzaHomicide/vidctl/internal/ui/tui/keybindings"
	tea "github.com/charmbracelet/bubbletea"
)

// AppModel is the main application model that coordinates the player and its modals.  It is the high level wrapper.
type AppModel struct {
	config        *config.Config
	controller    Controller
	updates       <-chan playback.ViewState
	width, height int

	player *PlayerModel
	// modal is drawn over the player when set
	modal Model
}

// NewAppModel creates the app for one playback session.  updates is the session's read-model subscription.
func NewAppModel(cfg *config.Config, title string, controller Controller, updates <-chan playback.ViewState, initial playback.ViewState) AppModel {
	return AppModel{
		config:     cfg,
		controller: controller,
		updates:    updates,
		player:     NewPlayerModel(title, cfg.Playback.SeekStepSeconds, controller, initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising vidctl TUI")
	return tea.Batch(m.player.Init(), listenForUpdates(m.updates))
}

// listenForUpdates waits for the next read-model from the session
func listenForUpdates(updates <-chan playback.ViewState) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return SessionClosedMsg{}
		}
		return SessionUpdatedMsg{State: state}
	}
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		m.player.Resize(msg.Width, msg.Height)
		if m.modal != nil {
			m.modal.Resize(msg.Width, msg.Height)
		}
		return m, nil

	case SessionUpdatedMsg:
		m.player.SetState(msg.State)
		return m, listenForUpdates(m.updates)

	case SessionClosedMsg:
		log.Info("Playback session closed.  Shutting down...")
		return m, tea.Quit

	case OpenModalMsg:
		return m, m.openModal(msg.Modal)

	case CloseModalMsg:
		m.modal = nil
		return m, nil

	case QualitySelectedMsg:
		if opt, ok := msg.Option.Get(); ok {
			m.controller.SelectQuality(opt)
		} else {
			m.controller.SelectAutoQuality()
		}
		m.modal = nil
		return m, nil

	case SeekSubmittedMsg:
		log.Info("Seeking to entered time", "seconds", msg.Seconds)
		m.controller.Seek(msg.Seconds)
		m.modal = nil
		return m, nil

	case HandledMsg:
		log.Trace("Message handled", "source", msg.Source)
		return m, nil
	}

	// Spinner ticks belong to the player even while a modal is open
	if m.modal != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m.updateModal(msg)
		}
	}

	model, cmd := m.player.Update(msg)
	m.player = model.(*PlayerModel)
	if m.modal != nil {
		var modalCmd tea.Cmd
		m.modal, modalCmd = m.modal.Update(msg)
		cmd = tea.Batch(cmd, modalCmd)
	}
	return m, cmd
}

// handleGlobalKey processes keys that work everywhere.  Search inputs keep esc for themselves.
func (m *AppModel) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch kb.GetActionByKey(msg, kb.ContextGlobal) {
	case kb.ActionQuit:
		log.Info("Quit command received.  Shutting down...")
		return tea.Quit, true
	case kb.ActionToggleHelp:
		if m.modal != nil && m.modal.ViewType() == ViewHelp {
			m.modal = nil
			return nil, true
		}
		context := ViewPlayer
		if m.modal != nil {
			context = m.modal.ViewType()
		}
		log.Debug("Help requested", "context", context)
		help := NewHelpModel(context)
		help.Resize(m.width, m.height)
		m.modal = help
		return help.Init(), true
	case kb.ActionBack:
		if quality, ok := m.modal.(*QualitySelectModel); ok && quality.SearchMode() {
			return nil, false
		}
		if m.modal != nil {
			m.modal = nil
			return nil, true
		}
	}
	return nil, false
}

func (m *AppModel) openModal(view View) tea.Cmd {
	state := m.player.state
	switch view {
	case ViewQualitySelect:
		m.modal = NewQualitySelectModel(state.Qualities, state.SelectedQuality)
	case ViewSeekPrompt:
		m.modal = NewSeekPromptModel(state.Progress.SeekableDuration)
	default:
		log.Warn("Unknown modal requested", "modal", view)
		return nil
	}
	m.modal.Resize(m.width, m.height)
	return m.modal.Init()
}

func (m AppModel) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.modal.Update(msg)
	m.modal = model
	return m, cmd
}

func (m AppModel) View() string {
	// If there is an active modal it takes precedence
	if m.modal != nil {
		return m.modal.View()
	}
	return m.player.View()
}
