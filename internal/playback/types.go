package playback

import "fmt"

// Phase is the coarse lifecycle position of a session.  There is no terminal phase.
type Phase uint8

const (
	// PhaseIdle means nothing has been requested yet
	PhaseIdle Phase = iota
	// PhaseRequested means playback was asked for but the engine has not started rendering
	PhaseRequested
	// PhaseActive means the engine has loaded the media and is rendering frames
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRequested:
		return "requested"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// Intent is what the user or host last asked for, independent of what the engine reports
type Intent uint8

const (
	IntentNotPlaying Intent = iota
	IntentPlaying
)

func (i Intent) String() string {
	if i == IntentPlaying {
		return "playing"
	}
	return "not-playing"
}

// EngineStatus tracks whether an engine handle is available to receive commands
type EngineStatus uint8

const (
	EngineDetached EngineStatus = iota
	EngineLaunching
	EngineAttached
)

func (s EngineStatus) String() string {
	switch s {
	case EngineDetached:
		return "detached"
	case EngineLaunching:
		return "launching"
	case EngineAttached:
		return "attached"
	default:
		return "unknown"
	}
}

// ProgressSnapshot is the last progress report from the engine.  All values are seconds.
type ProgressSnapshot struct {
	CurrentTime      float64 `json:"currentTime"`
	PlayableDuration float64 `json:"playableDuration"`
	SeekableDuration float64 `json:"seekableDuration"`
	BufferedPosition float64 `json:"bufferedPosition"`
}

// StreamInfo describes the stream as the engine is currently delivering it
type StreamInfo struct {
	Bitrate     int
	CurrentTime float64
	Duration    float64
}

// VideoTrack is a video track descriptor as reported by the engine
type VideoTrack struct {
	Height  int
	Width   int
	Bitrate int
}

// QualityOption is one selectable rendition of the stream
type QualityOption struct {
	Height  int
	Width   int
	Bitrate int
}

// Label is the human readable name of the option, e.g. "720p"
func (q QualityOption) Label() string {
	if q.Height > 0 {
		return fmt.Sprintf("%dp", q.Height)
	}
	return fmt.Sprintf("%d kbps", q.Bitrate/1000)
}

// Capabilities are the optional features an attached engine supports
type Capabilities struct {
	PictureInPicture bool
}
