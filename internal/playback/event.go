package playback

import "github.com/samber/mo"

// Event is anything the session reacts to: engine callbacks, user intents and internal completions
type Event interface {
	event()
}

// Engine callbacks

// LoadEvent reports that the engine finished loading the media
type LoadEvent struct{}

// BufferEvent reports buffering starting or stopping
type BufferEvent struct {
	IsBuffering bool
}

// ProgressEvent is the engine's periodic progress report
type ProgressEvent struct {
	ProgressSnapshot
}

// ErrorEvent reports an engine failure
type ErrorEvent struct {
	Err EngineError
}

// TracksChangedEvent reports the video tracks known to the engine
type TracksChangedEvent struct {
	VideoTracks []VideoTrack
}

// BandwidthEvent reports the bitrate the engine is currently delivering
type BandwidthEvent struct {
	Bitrate int
}

// PIPStatusEvent reports a picture-in-picture status change
type PIPStatusEvent struct {
	Status string
}

// PIPActiveEvent reports picture-in-picture becoming active or inactive
type PIPActiveEvent struct {
	Active bool
}

// PIPRestoreEvent reports the host UI being restored when picture-in-picture stops
type PIPRestoreEvent struct{}

// User and host intents

// PlayRequested asks for playback to start.  Idempotent.
type PlayRequested struct{}

// TogglePlay flips between paused and playing
type TogglePlay struct{}

// PauseRequested explicitly pauses
type PauseRequested struct{}

// ResumeRequested explicitly resumes
type ResumeRequested struct{}

// SeekRequested asks for an exact seek to an absolute position in seconds
type SeekRequested struct {
	Seconds float64
}

// SeekRelative asks for a seek relative to the current position
type SeekRelative struct {
	Delta float64
}

// PIPRequested asks the engine to enter picture-in-picture
type PIPRequested struct{}

// ToggleControls flips the visibility of the controls overlay
type ToggleControls struct{}

// QualityRequested selects a quality option.  None selects the engine's automatic mode.
type QualityRequested struct {
	Option mo.Option[QualityOption]
}

// Internal completions posted by the session itself

type engineAttached struct {
	engine Engine
	caps   Capabilities
}

type engineLaunchFailed struct {
	err error
}

type engineDetached struct{}

type seekCompleted struct {
	generation uint64
	target     float64
	err        error
}

func (LoadEvent) event()          {}
func (BufferEvent) event()        {}
func (ProgressEvent) event()      {}
func (ErrorEvent) event()         {}
func (TracksChangedEvent) event() {}
func (BandwidthEvent) event()     {}
func (PIPStatusEvent) event()     {}
func (PIPActiveEvent) event()     {}
func (PIPRestoreEvent) event()    {}
func (PlayRequested) event()      {}
func (TogglePlay) event()         {}
func (PauseRequested) event()     {}
func (ResumeRequested) event()    {}
func (SeekRequested) event()      {}
func (SeekRelative) event()       {}
func (PIPRequested) event()       {}
func (ToggleControls) event()     {}
func (QualityRequested) event()   {}
func (engineAttached) event()     {}
func (engineLaunchFailed) event() {}
func (engineDetached) event()     {}
func (seekCompleted) event()      {}
