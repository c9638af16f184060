package models

import (
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/samber/mo"
)

// SessionUpdatedMsg carries the latest read-model of the playback session
type SessionUpdatedMsg struct {
	State playback.ViewState
}

// SessionClosedMsg is sent when the playback session has stopped
type SessionClosedMsg struct{}

// OpenModalMsg asks the app to display a modal over the player
type OpenModalMsg struct {
	Modal View
}

// CloseModalMsg asks the app to return to the player
type CloseModalMsg struct{}

// QualitySelectedMsg is sent when a quality is picked in the quality modal.  None means automatic.
type QualitySelectedMsg struct {
	Option mo.Option[playback.QualityOption]
}

// SeekSubmittedMsg is sent when a valid time is entered in the seek prompt
type SeekSubmittedMsg struct {
	Seconds float64
}
