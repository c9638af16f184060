package playback

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/google/uuid"
)

const eventQueueSize = 256

// Options configure a session.  Only VideoURL is required.
type Options struct {
	VideoURL string
	// AutoPIP starts playback immediately in a minimised presentation
	AutoPIP bool
	// OnProgress receives every progress report.  It is called from the session goroutine and must not block.
	OnProgress func(ProgressReport)

	HideControls     bool
	PreferredQuality string
	// Recovery overrides the policy for individual error kinds
	Recovery map[ErrorKind]RecoveryPolicy
	Logger   *log.Logger
}

// Session runs one playback session: a single goroutine owns the state machine and applies every event in order.
type Session struct {
	id       string
	opts     Options
	launcher Launcher
	machine  *Machine
	logger   *log.Logger

	events chan Event
	stop   chan struct{}
	done   chan struct{}

	// Only touched from the Run goroutine
	engine     Engine
	seekCancel context.CancelFunc
	workers    sync.WaitGroup

	mu          sync.RWMutex
	view        ViewState
	subscribers []chan ViewState
	running     bool

	stopOnce sync.Once
}

// New validates opts and creates a session.  Nothing happens until Run is called.
func New(launcher Launcher, opts Options) (*Session, error) {
	if launcher == nil {
		return nil, errors.New("engine launcher is required")
	}
	if opts.VideoURL == "" {
		return nil, errors.New("video url is required")
	}
	if _, err := url.Parse(opts.VideoURL); err != nil {
		return nil, fmt.Errorf("invalid video url: %w", err)
	}

	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	logger = logger.With("session_id", id)

	s := &Session{
		id:       id,
		opts:     opts,
		launcher: launcher,
		machine:  NewMachine(opts, logger),
		logger:   logger,
		events:   make(chan Event, eventQueueSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.view = s.machine.View()
	return s, nil
}

// ID is the unique id of this session, also attached to its log lines
func (s *Session) ID() string {
	return s.id
}

// Handle returns the control surface for this session
func (s *Session) Handle() *Handle {
	return &Handle{session: s}
}

// Snapshot returns the latest read-model
func (s *Session) Snapshot() ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Subscribe returns a channel that always holds the latest read-model.  Intermediate states may be skipped if the
// reader is slow.  The channel is closed when the session stops.
func (s *Session) Subscribe() <-chan ViewState {
	ch := make(chan ViewState, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		close(ch)
		return ch
	default:
	}
	ch <- s.view
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Done is closed once Run has returned and all engine resources are released
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the session.  It is safe to call more than once and from any goroutine.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

// Run processes events until ctx is cancelled or Close is called.  It may only be called once.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("session already running")
	}
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer s.shutdown(cancel)

	s.logger.Info("Starting playback session", "url", s.opts.VideoURL, "auto_pip", s.opts.AutoPIP)
	if s.opts.AutoPIP {
		s.apply(ctx, PlayRequested{})
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Playback session context done", "reason", ctx.Err())
			return nil
		case <-s.stop:
			s.logger.Info("Playback session closed")
			return nil
		case ev := <-s.events:
			s.apply(ctx, ev)
		}
	}
}

func (s *Session) apply(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case engineAttached:
		if s.engine != nil {
			s.logger.Warn("Engine attached while another engine is active, closing the new one")
			s.closeEngine(ev.engine)
			return
		}
		s.engine = ev.engine
		s.pumpEngineEvents(ctx, ev.engine)
	case engineDetached:
		s.engine = nil
	}

	cmds := s.machine.Apply(ev)
	for _, cmd := range cmds {
		s.execute(ctx, cmd)
	}
	s.publish()
}

func (s *Session) execute(ctx context.Context, cmd Command) {
	s.logger.Debug("Executing engine command", "command", cmd.Kind, "seconds", cmd.Seconds, "bitrate", cmd.Bitrate)

	if cmd.Kind == CommandLaunch {
		s.launch(ctx)
		return
	}
	if s.engine == nil {
		s.logger.Warn("Engine command dropped", "command", cmd.Kind, "error", ErrEngineNotAttached)
		if cmd.Kind == CommandSeek {
			s.postInternal(ctx, seekCompleted{generation: cmd.Generation, target: cmd.Seconds, err: ErrEngineNotAttached})
		}
		return
	}

	var err error
	switch cmd.Kind {
	case CommandPlay:
		err = s.engine.Play()
	case CommandPause:
		err = s.engine.Pause()
	case CommandSeek:
		s.seek(ctx, cmd)
	case CommandEnterPIP:
		err = s.engine.EnterPictureInPicture()
	case CommandSetMaxBitrate:
		err = s.engine.SetMaxBitrate(cmd.Bitrate)
	case CommandReload:
		err = s.engine.Reload(ctx)
	default:
		err = fmt.Errorf("unknown command %s", cmd.Kind)
	}
	if err != nil {
		s.logger.Error("Engine command failed", "command", cmd.Kind, "error", err)
	}
}

// seek runs the engine seek off the loop so engine callbacks keep flowing while it settles
func (s *Session) seek(ctx context.Context, cmd Command) {
	if s.seekCancel != nil {
		s.seekCancel()
	}
	seekCtx, cancel := context.WithCancel(ctx)
	s.seekCancel = cancel

	engine := s.engine
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		defer cancel()
		err := engine.Seek(seekCtx, cmd.Seconds, cmd.Tolerance)
		s.postInternal(ctx, seekCompleted{generation: cmd.Generation, target: cmd.Seconds, err: err})
	}()
}

func (s *Session) launch(ctx context.Context) {
	s.logger.Info("Launching engine")
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		engine, err := s.launcher.Launch(ctx, s.opts.VideoURL, LaunchOptions{AutoPIP: s.opts.AutoPIP})
		if err != nil {
			s.postInternal(ctx, engineLaunchFailed{err: err})
			return
		}
		if !s.postInternal(ctx, engineAttached{engine: engine, caps: engine.Capabilities()}) {
			s.closeEngine(engine)
		}
	}()
}

func (s *Session) pumpEngineEvents(ctx context.Context, engine Engine) {
	s.workers.Add(1)
	go func() {
		defer s.workers.Done()
		events := engine.Events()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					s.postInternal(ctx, engineDetached{})
					return
				}
				if !s.postInternal(ctx, ev) {
					return
				}
			}
		}
	}()
}

// postInternal queues an event produced by the session's own goroutines.  It only gives up when ctx is done.
func (s *Session) postInternal(ctx context.Context, ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// post queues an intent from outside the session without blocking
func (s *Session) post(ev Event) error {
	select {
	case <-s.stop:
		return ErrSessionClosed
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.events <- ev:
		return nil
	default:
		return fmt.Errorf("event queue full, dropping %T", ev)
	}
}

func (s *Session) publish() {
	view := s.machine.View()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	for _, ch := range s.subscribers {
		// Replace whatever the subscriber has not read yet
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

func (s *Session) closeEngine(engine Engine) {
	if err := engine.Close(); err != nil {
		s.logger.Warn("Error closing engine", "error", err)
	}
}

func (s *Session) shutdown(cancel context.CancelFunc) {
	cancel()
	if s.engine != nil {
		s.closeEngine(s.engine)
		s.engine = nil
	}
	s.workers.Wait()
	s.drainEngines()

	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.done)
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	s.logger.Info("Playback session stopped")
}

// drainEngines closes engines whose attach event was queued but never applied
func (s *Session) drainEngines() {
	for {
		select {
		case ev := <-s.events:
			if attached, ok := ev.(engineAttached); ok {
				s.closeEngine(attached.engine)
			}
		default:
			return
		}
	}
}
