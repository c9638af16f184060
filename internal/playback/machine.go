package playback

import (
	"fmt"
	"math"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Machine is the playback state machine.  Apply is the only way to change its state.
type Machine struct {
	state            State
	progress         *ProgressTracker
	quality          *QualityRegistry
	recovery         map[ErrorKind]RecoveryPolicy
	attempts         map[ErrorKind]int
	preferredQuality string
	logger           *log.Logger
}

// NewMachine creates a machine in its initial state
func NewMachine(opts Options, logger *log.Logger) *Machine {
	recovery := DefaultRecovery()
	for kind, policy := range opts.Recovery {
		recovery[kind] = policy
	}

	return &Machine{
		state:            InitialState(opts.AutoPIP, !opts.HideControls),
		progress:         NewProgressTracker(opts.OnProgress),
		quality:          NewQualityRegistry(),
		recovery:         recovery,
		attempts:         make(map[ErrorKind]int),
		preferredQuality: opts.PreferredQuality,
		logger:           logger,
	}
}

// State returns a copy of the current state
func (m *Machine) State() State {
	return m.state
}

// Progress returns the progress tracker, for reading
func (m *Machine) Progress() *ProgressTracker {
	return m.progress
}

// Quality returns the quality registry, for reading
func (m *Machine) Quality() *QualityRegistry {
	return m.quality
}

// Apply runs the transition for ev and returns the engine commands it requires, in order
func (m *Machine) Apply(ev Event) []Command {
	m.logger.Trace("Applying event", "event", fmt.Sprintf("%T", ev))

	switch ev := ev.(type) {
	case PlayRequested:
		return m.requestPlay()
	case TogglePlay:
		return m.togglePlay()
	case PauseRequested:
		return m.setPaused(true)
	case ResumeRequested:
		if m.state.Phase == PhaseIdle {
			return m.requestPlay()
		}
		return m.setPaused(false)
	case SeekRequested:
		return m.seek(ev.Seconds)
	case SeekRelative:
		return m.seekRelative(ev.Delta)
	case PIPRequested:
		return m.enterPIP()
	case ToggleControls:
		m.state.ControlsVisible = !m.state.ControlsVisible
		return nil
	case QualityRequested:
		return m.selectQuality(ev.Option)

	case LoadEvent:
		return m.onLoad()
	case BufferEvent:
		return m.onBuffer(ev.IsBuffering)
	case ProgressEvent:
		m.progress.Update(ev.ProgressSnapshot)
		if m.state.Phase == PhaseRequested && m.progress.Snapshot().CurrentTime > 0 {
			m.state.Phase = PhaseActive
		}
		return nil
	case BandwidthEvent:
		m.logger.Debug("Bandwidth update", "bitrate", ev.Bitrate)
		m.progress.SetBitrate(ev.Bitrate)
		return nil
	case TracksChangedEvent:
		return m.onTracksChanged(ev.VideoTracks)
	case ErrorEvent:
		return m.onError(ev.Err)
	case PIPStatusEvent:
		m.logger.Info("Picture-in-picture status changed", "status", ev.Status)
		return nil
	case PIPActiveEvent:
		m.logger.Info("Picture-in-picture active status", "active", ev.Active)
		m.state.PIPActive = ev.Active
		return nil
	case PIPRestoreEvent:
		m.logger.Info("Picture-in-picture stopped, UI restored")
		m.state.PIPActive = false
		return nil

	case engineAttached:
		return m.onEngineAttached(ev.caps)
	case engineLaunchFailed:
		m.logger.Error("Failed to launch engine", "error", ev.err)
		m.state.Engine = EngineDetached
		m.state.LastError = ev.err.Error()
		return nil
	case engineDetached:
		m.logger.Info("Engine detached")
		m.state.Engine = EngineDetached
		m.state.PIPActive = false
		return nil
	case seekCompleted:
		return m.onSeekCompleted(ev)
	}

	m.logger.Warn("Ignoring unknown event", "event", fmt.Sprintf("%T", ev))
	return nil
}

func (m *Machine) requestPlay() []Command {
	wasPaused := m.state.Paused
	if m.state.Phase == PhaseIdle {
		m.state.Phase = PhaseRequested
	}
	m.state.Intent = IntentPlaying
	if m.state.Seek.InFlight {
		return m.deferPause(false)
	}
	m.state.Paused = false

	switch m.state.Engine {
	case EngineDetached:
		m.state.Engine = EngineLaunching
		return []Command{{Kind: CommandLaunch}}
	case EngineAttached:
		if wasPaused {
			return []Command{playCommand()}
		}
	}
	// Launching: the attach transition asserts the current pause flag
	return nil
}

func (m *Machine) togglePlay() []Command {
	if m.state.Phase == PhaseIdle {
		m.logger.Debug("Toggle play ignored while idle")
		return nil
	}
	if m.state.Seek.InFlight {
		return m.deferPause(!m.state.Seek.PauseAfter.OrElse(false))
	}
	return m.setPaused(!m.state.Paused)
}

func (m *Machine) setPaused(paused bool) []Command {
	if m.state.Seek.InFlight {
		return m.deferPause(paused)
	}
	if m.state.Paused == paused {
		return nil
	}
	m.state.Paused = paused
	if m.state.Engine != EngineAttached {
		return nil
	}
	if paused {
		return []Command{pauseCommand()}
	}
	return []Command{playCommand()}
}

// deferPause records a play/pause intent for the end of the in-flight seek.  The engine stays paused until then.
func (m *Machine) deferPause(paused bool) []Command {
	m.logger.Debug("Seek in flight, deferring play state", "paused", paused)
	m.state.Seek.PauseAfter = mo.Some(paused)
	return nil
}

func (m *Machine) onLoad() []Command {
	if m.state.Loaded {
		m.logger.Debug("Duplicate load event ignored")
		return nil
	}
	m.logger.Info("Video loaded")
	m.state.Loaded = true
	if m.state.Phase == PhaseRequested {
		m.state.Phase = PhaseActive
	}
	return m.maybeAutoPIP()
}

// onBuffer applies a buffering change.  When buffering ends the engine may have paused itself, so play is re-asserted
// unless the user explicitly paused.
func (m *Machine) onBuffer(isBuffering bool) []Command {
	wasBuffering := m.state.Buffering
	m.state.Buffering = isBuffering
	m.logger.Debug("Buffering changed", "buffering", isBuffering, "paused", m.state.Paused)

	if wasBuffering && !isBuffering && !m.state.Paused && m.state.Engine == EngineAttached {
		return []Command{playCommand()}
	}
	return nil
}

func (m *Machine) seek(target float64) []Command {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		m.logger.Error("Error seeking video", "error", ErrInvalidSeekTarget, "target", target)
		return nil
	}
	if m.state.Engine != EngineAttached {
		m.logger.Warn("Seek ignored", "error", ErrEngineNotAttached, "target", target)
		return nil
	}

	clamped := m.clampSeek(target)
	if clamped != target {
		m.logger.Warn("Seek target outside the seekable range, clamping",
			"requested", target, "clamped", clamped, "seekable", m.progress.Snapshot().SeekableDuration)
	}

	if m.state.Seek.InFlight {
		m.logger.Debug("Seek in flight, coalescing", "in_flight", m.state.Seek.Target, "pending", clamped)
		m.state.Seek.Pending = mo.Some(clamped)
		return nil
	}
	return m.startSeek(clamped)
}

// startSeek pauses before seeking so the engine does not render frames from the old position
func (m *Machine) startSeek(target float64) []Command {
	m.state.Seek.Generation++
	m.state.Seek.InFlight = true
	m.state.Seek.Target = target
	m.state.Seek.Pending = mo.None[float64]()
	m.state.Paused = true

	return []Command{
		pauseCommand(),
		{Kind: CommandSeek, Seconds: target, Tolerance: 0, Generation: m.state.Seek.Generation},
	}
}

func (m *Machine) onSeekCompleted(ev seekCompleted) []Command {
	if !m.state.Seek.InFlight || ev.generation != m.state.Seek.Generation {
		m.logger.Debug("Stale seek completion ignored", "generation", ev.generation)
		return nil
	}
	m.state.Seek.InFlight = false

	if ev.err != nil {
		// No rollback: the pause flag stays where the failed sequence left it
		seekErr := &SeekError{Target: ev.target, Err: ev.err}
		m.logger.Error("Error seeking video", "error", seekErr)
		m.state.LastError = seekErr.Error()
	}

	if pending, ok := m.state.Seek.Pending.Get(); ok {
		return m.startSeek(pending)
	}

	deferred, hasDeferred := m.state.Seek.PauseAfter.Get()
	m.state.Seek.PauseAfter = mo.None[bool]()
	if ev.err != nil && !hasDeferred {
		return nil
	}
	if deferred {
		m.logger.Debug("Seek completed, staying paused", "target", ev.target)
		return nil
	}

	m.logger.Debug("Seek completed", "target", ev.target, "buffering", m.state.Buffering)
	m.state.Paused = false
	if m.state.Buffering {
		// Resumed by the buffering monitor once buffering ends
		return nil
	}
	return []Command{playCommand()}
}

func (m *Machine) seekRelative(delta float64) []Command {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		m.logger.Error("Error seeking video", "error", ErrInvalidSeekTarget, "delta", delta)
		return nil
	}
	return m.seek(m.progress.Snapshot().CurrentTime + delta)
}

// clampSeek limits target to [0, seekableDuration].  Before the duration is known only the lower bound applies.
func (m *Machine) clampSeek(target float64) float64 {
	seekable := m.progress.Snapshot().SeekableDuration
	if seekable <= 0 {
		return math.Max(target, 0)
	}
	return lo.Clamp(target, 0, seekable)
}

func (m *Machine) enterPIP() []Command {
	if m.state.Engine != EngineAttached || !m.state.Capabilities.PictureInPicture {
		m.logger.Info("PIP not supported", "error", ErrUnsupportedPIP)
		return nil
	}
	if !m.state.Loaded {
		m.logger.Info("PIP mode not available yet (video still loading or buffering)")
		return nil
	}
	return []Command{{Kind: CommandEnterPIP}}
}

// maybeAutoPIP requests picture-in-picture once per session when autoPIP is configured and the video is loaded and
// meant to be playing
func (m *Machine) maybeAutoPIP() []Command {
	if !m.state.AutoPIP || m.state.autoPIPRequested || !m.state.Loaded || m.state.Intent != IntentPlaying {
		return nil
	}
	m.state.autoPIPRequested = true
	return m.enterPIP()
}

func (m *Machine) onTracksChanged(tracks []VideoTrack) []Command {
	m.quality.Replace(tracks)
	m.logger.Info("Video tracks changed", "count", len(tracks))

	if m.preferredQuality == "" || m.quality.Selected().IsPresent() {
		return nil
	}
	option, ok := m.quality.Find(m.preferredQuality)
	if !ok {
		m.logger.Warn("Preferred quality not available", "quality", m.preferredQuality)
		return nil
	}
	return m.selectQuality(mo.Some(option))
}

func (m *Machine) selectQuality(option mo.Option[QualityOption]) []Command {
	bitrate := 0
	if opt, ok := option.Get(); ok {
		if err := m.quality.Select(opt); err != nil {
			m.logger.Warn("Quality selection rejected", "error", err)
			m.state.LastError = err.Error()
			return nil
		}
		bitrate = opt.Bitrate
		m.logger.Info("Quality selected", "quality", opt.Label(), "bitrate", opt.Bitrate)
	} else {
		m.quality.SelectAuto()
		m.logger.Info("Quality selection set to auto")
	}

	if m.state.Engine != EngineAttached {
		// Applied when the engine attaches
		return nil
	}
	return []Command{{Kind: CommandSetMaxBitrate, Bitrate: bitrate}}
}

func (m *Machine) onError(err EngineError) []Command {
	m.attempts[err.Kind]++
	attempt := m.attempts[err.Kind]
	m.logger.Error("Video error", "kind", err.Kind, "error", err.Message, "exception", err.Exception, "attempt", attempt)
	m.state.LastError = err.Error()

	policy, ok := m.recovery[err.Kind]
	if !ok {
		policy = LogOnly
	}
	cmds := policy.Recover(err, attempt)
	if len(cmds) > 0 {
		m.logger.Info("Recovering from engine error", "kind", err.Kind, "commands", len(cmds))
	}
	return cmds
}

func (m *Machine) onEngineAttached(caps Capabilities) []Command {
	m.state.Engine = EngineAttached
	m.state.Capabilities = caps
	m.logger.Info("Engine attached", "pip", caps.PictureInPicture)

	var cmds []Command
	if sel, ok := m.quality.Selected().Get(); ok {
		cmds = append(cmds, Command{Kind: CommandSetMaxBitrate, Bitrate: sel.Bitrate})
	}
	if m.state.Paused {
		cmds = append(cmds, pauseCommand())
	} else {
		cmds = append(cmds, playCommand())
	}
	return append(cmds, m.maybeAutoPIP()...)
}

// View derives the read-model from the current state
func (m *Machine) View() ViewState {
	snapshot := m.progress.Snapshot()
	return ViewState{
		Phase:            m.state.Phase,
		Intent:           m.state.Intent,
		Paused:           m.state.Paused,
		Loaded:           m.state.Loaded,
		Buffering:        m.state.Buffering,
		Seeking:          m.state.Seeking(),
		ControlsVisible:  m.state.ControlsVisible,
		AutoPIP:          m.state.AutoPIP,
		PIPActive:        m.state.PIPActive,
		CanEnterPIP:      m.state.Loaded && m.state.Capabilities.PictureInPicture,
		Engine:           m.state.Engine,
		Progress:         snapshot,
		Percentage:       Percentage(snapshot),
		PlayedFraction:   fraction(snapshot.CurrentTime, snapshot.SeekableDuration),
		BufferedFraction: fraction(snapshot.BufferedPosition, snapshot.SeekableDuration),
		TimeLabel:        FormatTime(snapshot.CurrentTime) + " / " + FormatTime(snapshot.SeekableDuration),
		Stream:           m.progress.Stream(),
		Qualities:        m.quality.Options(),
		SelectedQuality:  m.quality.Selected(),
		LastError:        m.state.LastError,
	}
}
