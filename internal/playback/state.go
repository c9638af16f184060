package playback

import "github.com/samber/mo"

// SeekState tracks the one seek sequence allowed in flight.  Requests arriving while a seek is in flight are
// coalesced into Pending; the latest one wins.
type SeekState struct {
	InFlight   bool
	Generation uint64
	Target     float64
	Pending    mo.Option[float64]
	// PauseAfter holds a play/pause intent received mid-seek.  It replaces the resume at the end of the sequence.
	PauseAfter mo.Option[bool]
}

// State is the single record the machine owns.  Nothing else mutates it.
type State struct {
	Phase  Phase
	Intent Intent
	// Paused is the explicit pause flag.  The engine is commanded to play iff Paused is false.
	Paused bool
	// Loaded only ever goes from false to true
	Loaded          bool
	Buffering       bool
	ControlsVisible bool
	AutoPIP         bool
	PIPActive       bool
	Engine          EngineStatus
	Capabilities    Capabilities
	Seek            SeekState
	// LastError is the most recent failure, for display only
	LastError string

	autoPIPRequested bool
}

// Seeking reports whether a seek sequence is in flight
func (s State) Seeking() bool {
	return s.Seek.InFlight
}

// InitialState is the state of a new session.  With autoPIP playback is requested immediately.
func InitialState(autoPIP, controlsVisible bool) State {
	s := State{
		Phase:           PhaseIdle,
		Intent:          IntentNotPlaying,
		Paused:          true,
		ControlsVisible: controlsVisible,
		AutoPIP:         autoPIP,
		Seek:            SeekState{Pending: mo.None[float64](), PauseAfter: mo.None[bool]()},
	}
	if autoPIP {
		s.Phase = PhaseRequested
		s.Intent = IntentPlaying
		s.Paused = false
	}
	return s
}
