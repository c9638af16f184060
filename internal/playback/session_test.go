package playback

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	events chan Event
	caps   Capabilities

	mu        sync.Mutex
	calls     []string
	seeks     []float64
	seekErr   error
	seekGate  chan struct{}
	closed    bool
	closeOnce sync.Once
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan Event, 16)}
}

func (f *fakeEngine) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeEngine) Seeks() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.seeks...)
}

func (f *fakeEngine) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeEngine) Events() <-chan Event         { return f.events }
func (f *fakeEngine) Capabilities() Capabilities   { return f.caps }
func (f *fakeEngine) Play() error                  { return f.record("play") }
func (f *fakeEngine) Pause() error                 { return f.record("pause") }
func (f *fakeEngine) EnterPictureInPicture() error { return f.record("pip") }
func (f *fakeEngine) SetMaxBitrate(int) error      { return f.record("bitrate") }
func (f *fakeEngine) Reload(context.Context) error { return f.record("reload") }

func (f *fakeEngine) Seek(ctx context.Context, seconds float64, _ time.Duration) error {
	f.mu.Lock()
	f.calls = append(f.calls, "seek")
	f.seeks = append(f.seeks, seconds)
	gate, err := f.seekGate, f.seekErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeEngine) Close() error {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.events)
	})
	return nil
}

func startSession(t *testing.T, engine *fakeEngine, opts Options) *Session {
	t.Helper()
	if opts.VideoURL == "" {
		opts.VideoURL = "https://example.com/video.m3u8"
	}
	launcher := LauncherFunc(func(ctx context.Context, url string, _ LaunchOptions) (Engine, error) {
		assert.Equal(t, opts.VideoURL, url)
		return engine, nil
	})

	s, err := New(launcher, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})
	return s
}

func waitFor(t *testing.T, s *Session, cond func(ViewState) bool) {
	t.Helper()
	assert.Eventually(t, func() bool { return cond(s.Snapshot()) }, 2*time.Second, 5*time.Millisecond)
}

func TestNewValidatesOptions(t *testing.T) {
	launcher := LauncherFunc(func(context.Context, string, LaunchOptions) (Engine, error) { return nil, nil })

	_, err := New(launcher, Options{})
	assert.Error(t, err)

	_, err = New(nil, Options{VideoURL: "https://example.com/v.mp4"})
	assert.Error(t, err)

	s, err := New(launcher, Options{VideoURL: "https://example.com/v.mp4"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, PhaseIdle, s.Snapshot().Phase)
}

func TestSessionPlayLoadAndSeek(t *testing.T) {
	engine := newFakeEngine()
	var mu sync.Mutex
	var reports []ProgressReport
	s := startSession(t, engine, Options{OnProgress: func(r ProgressReport) {
		mu.Lock()
		reports = append(reports, r)
		mu.Unlock()
	}})
	h := s.Handle()

	h.RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })
	assert.Equal(t, []string{"play"}, engine.Calls())

	engine.events <- LoadEvent{}
	engine.events <- ProgressEvent{ProgressSnapshot{CurrentTime: 100, SeekableDuration: 120}}
	waitFor(t, s, func(v ViewState) bool { return v.Loaded && v.Progress.CurrentTime == 100 })

	h.SeekForward(30)
	waitFor(t, s, func(v ViewState) bool { return !v.Seeking && !v.Paused && len(engine.Seeks()) == 1 })
	assert.Equal(t, []float64{120}, engine.Seeks())
	assert.Equal(t, []string{"play", "pause", "seek", "play"}, engine.Calls())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reports, 1)
	assert.InDelta(t, 83.33, reports[0].Percentage.MustGet(), 0.01)
}

func TestSessionSeekBeforeEngineAttached(t *testing.T) {
	engine := newFakeEngine()
	s := startSession(t, engine, Options{})
	h := s.Handle()

	h.Seek(10)
	h.Seek(math.NaN())
	h.RequestPlay()

	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })
	assert.Empty(t, engine.Seeks())
	assert.Equal(t, PhaseRequested, s.Snapshot().Phase)
}

func TestSessionCoalescesSeeks(t *testing.T) {
	engine := newFakeEngine()
	engine.seekGate = make(chan struct{})
	s := startSession(t, engine, Options{})
	h := s.Handle()

	h.RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })
	engine.events <- ProgressEvent{ProgressSnapshot{CurrentTime: 5, SeekableDuration: 600}}
	waitFor(t, s, func(v ViewState) bool { return v.Progress.SeekableDuration == 600 })

	h.Seek(100)
	waitFor(t, s, func(v ViewState) bool { return v.Seeking })
	h.Seek(200)
	h.Seek(300)
	// The queue is ordered, so once the toggle shows both seeks have been coalesced
	h.ToggleControls()
	waitFor(t, s, func(v ViewState) bool { return !v.ControlsVisible })
	assert.True(t, s.Snapshot().Seeking)

	close(engine.seekGate)
	waitFor(t, s, func(v ViewState) bool { return !v.Seeking && !v.Paused })
	assert.Equal(t, []float64{100, 300}, engine.Seeks())
}

func TestSessionPauseDuringSeek(t *testing.T) {
	engine := newFakeEngine()
	engine.seekGate = make(chan struct{})
	s := startSession(t, engine, Options{})
	h := s.Handle()

	h.RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })

	h.Seek(40)
	waitFor(t, s, func(v ViewState) bool { return v.Seeking })
	h.Pause()
	h.ToggleControls()
	waitFor(t, s, func(v ViewState) bool { return !v.ControlsVisible })

	close(engine.seekGate)
	waitFor(t, s, func(v ViewState) bool { return !v.Seeking })
	assert.True(t, s.Snapshot().Paused)
	assert.Equal(t, []string{"play", "pause", "seek"}, engine.Calls())
}

func TestSessionSeekFailureIsLogged(t *testing.T) {
	engine := newFakeEngine()
	engine.seekErr = errors.New("seek rejected")
	s := startSession(t, engine, Options{})
	h := s.Handle()

	h.RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })

	h.Seek(15)
	waitFor(t, s, func(v ViewState) bool { return v.LastError != "" })
	v := s.Snapshot()
	assert.True(t, v.Paused)
	assert.False(t, v.Seeking)
	assert.Contains(t, v.LastError, "seek rejected")
}

func TestSessionBufferingResume(t *testing.T) {
	engine := newFakeEngine()
	s := startSession(t, engine, Options{})

	s.Handle().RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })

	engine.events <- BufferEvent{IsBuffering: true}
	waitFor(t, s, func(v ViewState) bool { return v.Buffering })
	engine.events <- BufferEvent{IsBuffering: false}
	waitFor(t, s, func(v ViewState) bool { return !v.Buffering })

	assert.Equal(t, []string{"play", "play"}, engine.Calls())
}

func TestSessionEngineDetach(t *testing.T) {
	engine := newFakeEngine()
	s := startSession(t, engine, Options{})

	s.Handle().RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })

	require.NoError(t, engine.Close())
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineDetached })
}

func TestSessionLaunchFailure(t *testing.T) {
	launcher := LauncherFunc(func(context.Context, string, LaunchOptions) (Engine, error) {
		return nil, errors.New("mpv: executable file not found")
	})
	s, err := New(launcher, Options{VideoURL: "https://example.com/v.mp4"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = s.Run(ctx)
	}()

	s.Handle().RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.LastError != "" })
	assert.Equal(t, EngineDetached, s.Snapshot().Engine)
}

func TestSessionAutoPIPStartsImmediately(t *testing.T) {
	engine := newFakeEngine()
	engine.caps = Capabilities{PictureInPicture: true}
	s := startSession(t, engine, Options{AutoPIP: true})

	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })
	engine.events <- LoadEvent{}
	waitFor(t, s, func(v ViewState) bool { return v.Loaded })

	assert.Eventually(t, func() bool {
		calls := engine.Calls()
		return len(calls) == 2 && calls[1] == "pip"
	}, time.Second, 5*time.Millisecond)
	assert.False(t, s.Snapshot().ShowControls())
}

func TestSessionSubscribe(t *testing.T) {
	engine := newFakeEngine()
	s := startSession(t, engine, Options{})
	updates := s.Subscribe()

	first := <-updates
	assert.Equal(t, PhaseIdle, first.Phase)

	s.Handle().ToggleControls()
	assert.Eventually(t, func() bool {
		select {
		case v := <-updates:
			return !v.ControlsVisible
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSessionClose(t *testing.T) {
	engine := newFakeEngine()
	launcher := LauncherFunc(func(context.Context, string, LaunchOptions) (Engine, error) { return engine, nil })
	s, err := New(launcher, Options{VideoURL: "https://example.com/v.mp4"})
	require.NoError(t, err)

	updates := s.Subscribe()
	runErr := make(chan error, 1)
	go func() {
		runErr <- s.Run(context.Background())
	}()

	s.Handle().RequestPlay()
	waitFor(t, s, func(v ViewState) bool { return v.Engine == EngineAttached })

	s.Close()
	s.Close()
	require.NoError(t, <-runErr)
	assert.True(t, engine.Closed())

	// Drain and confirm the subscription was closed
	for range updates {
	}

	// Intents after close are dropped without panicking
	s.Handle().Seek(10)
	var nilHandle *Handle
	nilHandle.Seek(10)
	nilHandle.TogglePlay()
}
