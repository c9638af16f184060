package models

import (
	"github.com/PizzaHomicide/vidctl/internal/playback"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is implemented by every view and modal the app can display
type Model interface {
	ViewType() View
	Init() tea.Cmd
	Update(msg tea.Msg) (Model, tea.Cmd)
	View() string
	Resize(width, height int)
}

// Controller is what the UI drives playback through.  *playback.Handle implements it.
type Controller interface {
	RequestPlay()
	TogglePlay()
	Seek(seconds float64)
	SeekForward(step float64)
	SeekBackward(step float64)
	EnterPictureInPicture()
	ToggleControls()
	SelectQuality(option playback.QualityOption)
	SelectAutoQuality()
}

// HandledMsg marks a key press as consumed when there is nothing else to do
type HandledMsg struct {
	Source string
}

// Handled returns a command that reports source handled the message
func Handled(source string) tea.Cmd {
	return func() tea.Msg {
		return HandledMsg{Source: source}
	}
}
