package player

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
)

const (
	connectTimeout    = 10 * time.Second
	connectAttempts   = 40
	connectRetryDelay = 250 * time.Millisecond
	seekSettleTimeout = 15 * time.Second
	quitGracePeriod   = 2 * time.Second
)

// MPVLauncher starts an mpv process per session and attaches to it over IPC
type MPVLauncher struct {
	config *config.Config
}

// NewMPVLauncher creates a launcher for the configured mpv binary
func NewMPVLauncher(cfg *config.Config) *MPVLauncher {
	return &MPVLauncher{config: cfg}
}

// Launch starts mpv paused on url and returns once the IPC connection is established and properties are observed
func (l *MPVLauncher) Launch(ctx context.Context, url string, opts playback.LaunchOptions) (playback.Engine, error) {
	logger := log.With("url", url)
	logger.Info("Starting MPV", "auto_pip", opts.AutoPIP)

	mpvPath := l.config.Player.Path
	if mpvPath == "" {
		mpvPath = "mpv"
	}
	socketPath := l.config.Player.SocketPath
	removeStaleSocket(socketPath)

	cmd := exec.Command(mpvPath, buildArgs(l.config, socketPath, url, opts)...)
	setupPlayerProcess(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start MPV: %w", err)
	}

	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		logger.Info("MPV process exited", "error", err)
		close(exited)
	}()

	connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	go func() {
		// Stop retrying as soon as mpv dies
		select {
		case <-exited:
			cancel()
		case <-connCtx.Done():
		}
	}()

	conn, err := WaitForConnection(connCtx, socketPath, connectAttempts, connectRetryDelay)
	if err != nil {
		terminateProcess(cmd)
		return nil, fmt.Errorf("failed to connect to MPV: %w", err)
	}

	client := NewMPVIPCClient(conn, time.Duration(l.config.Player.IPCTimeoutMs)*time.Millisecond)
	engine := newMPVEngine(client, url, time.Duration(l.config.Playback.ProgressIntervalMs)*time.Millisecond)
	engine.logger = logger.With("pid", cmd.Process.Pid)
	engine.cmd = cmd
	engine.exited = exited

	if err := engine.start(ctx); err != nil {
		_ = engine.Close()
		return nil, err
	}
	return engine, nil
}

// buildArgs assembles the mpv command line.  mpv starts paused so the session decides when playback begins.
func buildArgs(cfg *config.Config, socketPath, url string, opts playback.LaunchOptions) []string {
	args := []string{
		"--no-terminal",
		"--idle=yes",
		"--pause",
		"--keep-open=yes",
		"--input-ipc-server=" + socketPath,
		"--cache=yes",
	}

	buffer := cfg.Playback.Buffer
	if buffer.MaxBufferMs > 0 {
		args = append(args, "--cache-secs="+msToSeconds(buffer.MaxBufferMs))
	}
	if buffer.MinBufferMs > 0 {
		args = append(args, "--demuxer-hysteresis-secs="+msToSeconds(buffer.MinBufferMs))
	}
	if buffer.ForwardBufferSeconds > 0 {
		args = append(args, "--demuxer-readahead-secs="+strconv.Itoa(buffer.ForwardBufferSeconds))
	}
	if buffer.BufferForPlaybackAfterRebufferMs > 0 {
		args = append(args, "--cache-pause-wait="+msToSeconds(buffer.BufferForPlaybackAfterRebufferMs))
	}
	if buffer.BufferForPlaybackMs > 0 {
		args = append(args, "--cache-pause-initial=yes")
	}

	if cfg.Playback.MaxBitrate > 0 {
		args = append(args, "--hls-bitrate="+strconv.Itoa(cfg.Playback.MaxBitrate))
	}

	if opts.AutoPIP {
		args = append(args, "--force-window=no", "--window-minimized=yes")
	}

	if cfg.Player.Args != "" {
		args = append(args, ParseArgs(cfg.Player.Args)...)
	}

	return append(args, url)
}

func msToSeconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
}

// MPVEngine drives one mpv instance.  A single goroutine translates mpv messages into playback events.
type MPVEngine struct {
	client           *MPVIPCClient
	url              string
	progressInterval time.Duration
	logger           *log.Logger

	// Set by the launcher; nil when attached to an mpv the engine does not own
	cmd    *exec.Cmd
	exited <-chan struct{}

	events   chan playback.Event
	failures chan playback.EngineError

	restartMu      sync.Mutex
	restartWaiters []chan struct{}

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newMPVEngine(client *MPVIPCClient, url string, progressInterval time.Duration) *MPVEngine {
	if progressInterval <= 0 {
		progressInterval = time.Second
	}
	return &MPVEngine{
		client:           client,
		url:              url,
		progressInterval: progressInterval,
		logger:           log.With("url", url),
		events:           make(chan playback.Event, 32),
		failures:         make(chan playback.EngineError, 8),
		stop:             make(chan struct{}),
	}
}

// start observes the properties the engine translates and begins forwarding events
func (e *MPVEngine) start(ctx context.Context) error {
	for _, p := range observedProperties {
		if err := e.client.ObserveProperty(ctx, p.id, p.name); err != nil {
			return fmt.Errorf("failed to observe %s: %w", p.name, err)
		}
	}

	e.wg.Add(1)
	go e.run()
	return nil
}

func (e *MPVEngine) run() {
	defer e.wg.Done()
	defer close(e.events)

	ticker := time.NewTicker(e.progressInterval)
	defer ticker.Stop()

	var state propertyState
	messages := e.client.Events()
	for {
		select {
		case <-e.stop:
			return
		case <-e.exited:
			e.logger.Info("MPV exited, detaching engine")
			return
		case engineErr := <-e.failures:
			if !e.emit(playback.ErrorEvent{Err: engineErr}) {
				return
			}
		case <-ticker.C:
			if state.loaded && !e.emit(playback.ProgressEvent{ProgressSnapshot: state.snapshot()}) {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				e.logger.Debug("MPV event channel closed")
				return
			}
			if msg.Event == "playback-restart" {
				e.notifyRestart()
			}
			for _, ev := range translateMessage(&state, msg) {
				if !e.emit(ev) {
					return
				}
			}
		}
	}
}

func (e *MPVEngine) emit(ev playback.Event) bool {
	select {
	case e.events <- ev:
		return true
	case <-e.stop:
		return false
	}
}

// Events returns the engine's event stream.  It is closed when mpv goes away or the engine is closed.
func (e *MPVEngine) Events() <-chan playback.Event {
	return e.events
}

// Capabilities reports what this engine supports.  mpv has no picture-in-picture mode.
func (e *MPVEngine) Capabilities() playback.Capabilities {
	return playback.Capabilities{PictureInPicture: false}
}

func (e *MPVEngine) Play() error {
	return e.request(context.Background(), "set_property", "pause", false)
}

func (e *MPVEngine) Pause() error {
	return e.request(context.Background(), "set_property", "pause", true)
}

// Seek issues an absolute seek and waits for mpv's playback-restart, which marks the new position as settled
func (e *MPVEngine) Seek(ctx context.Context, seconds float64, tolerance time.Duration) error {
	flags := "absolute+exact"
	if tolerance > 0 {
		flags = "absolute+keyframes"
	}

	restarted := e.waitForRestart()
	if err := e.request(ctx, "seek", seconds, flags); err != nil {
		return err
	}

	timer := time.NewTimer(seekSettleTimeout)
	defer timer.Stop()
	select {
	case <-restarted:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: seek did not settle", ErrIPCTimeout)
	case <-e.client.Closed():
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *MPVEngine) EnterPictureInPicture() error {
	return playback.ErrUnsupportedPIP
}

// SetMaxBitrate caps the HLS variant mpv selects.  Zero lets mpv pick the best.
func (e *MPVEngine) SetMaxBitrate(bitrate int) error {
	var value any = bitrate
	if bitrate <= 0 {
		value = "max"
	}
	return e.request(context.Background(), "set_property", "hls-bitrate", value)
}

// Reload loads the session's URL again, keeping the current pause state
func (e *MPVEngine) Reload(ctx context.Context) error {
	e.logger.Info("Reloading video in MPV")
	return e.request(ctx, "loadfile", e.url, "replace")
}

// Close asks mpv to quit, then stops the process if it does not
func (e *MPVEngine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), quitGracePeriod)
		defer cancel()
		if _, quitErr := e.client.Request(ctx, "quit"); quitErr != nil {
			e.logger.Debug("MPV quit request failed", "error", quitErr)
		}

		close(e.stop)
		err = e.client.Close()
		e.wg.Wait()

		if e.cmd != nil {
			select {
			case <-e.exited:
			case <-time.After(quitGracePeriod):
				e.logger.Warn("MPV did not quit, terminating")
				terminateProcess(e.cmd)
			}
		}
	})
	return err
}

// request sends a command and reports IPC timeouts to the session as engine errors
func (e *MPVEngine) request(ctx context.Context, command ...any) error {
	_, err := e.client.Request(ctx, command...)
	if errors.Is(err, ErrIPCTimeout) {
		select {
		case e.failures <- playback.EngineError{Kind: playback.ErrorKindTimeout, Message: err.Error()}:
		default:
			e.logger.Warn("Dropping MPV timeout report", "error", err)
		}
	}
	return err
}

func (e *MPVEngine) waitForRestart() <-chan struct{} {
	ch := make(chan struct{})
	e.restartMu.Lock()
	e.restartWaiters = append(e.restartWaiters, ch)
	e.restartMu.Unlock()
	return ch
}

func (e *MPVEngine) notifyRestart() {
	e.restartMu.Lock()
	waiters := e.restartWaiters
	e.restartWaiters = nil
	e.restartMu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}
