package playback

import "github.com/samber/mo"

// ViewState is the read-model published to subscribers after every event.  It is a copy and safe to keep.
type ViewState struct {
	Phase           Phase
	Intent          Intent
	Paused          bool
	Loaded          bool
	Buffering       bool
	Seeking         bool
	ControlsVisible bool
	AutoPIP         bool
	PIPActive       bool
	CanEnterPIP     bool
	Engine          EngineStatus

	Progress         ProgressSnapshot
	Percentage       mo.Option[float64]
	PlayedFraction   float64
	BufferedFraction float64
	// TimeLabel is "m:ss / m:ss" of current time and seekable duration
	TimeLabel string
	Stream    StreamInfo

	Qualities       []QualityOption
	SelectedQuality mo.Option[QualityOption]

	LastError string
}

// ShowPlayButton is true until playback has been requested
func (v ViewState) ShowPlayButton() bool {
	return v.Phase == PhaseIdle
}

// ShowLoader is true while playback is requested but the video has not loaded
func (v ViewState) ShowLoader() bool {
	return v.Phase != PhaseIdle && !v.Loaded
}

// ShowControls is true when the controls overlay should be drawn.  Picture-in-picture sessions draw no overlay.
func (v ViewState) ShowControls() bool {
	return v.Phase != PhaseIdle && v.ControlsVisible && !v.AutoPIP
}

// IsPlaying reports whether the engine is meant to be rendering right now
func (v ViewState) IsPlaying() bool {
	return v.Intent == IntentPlaying && !v.Paused
}
