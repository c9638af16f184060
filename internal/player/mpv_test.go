package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/PizzaHomicide/vidctl/internal/config"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

// fakeMPV answers IPC requests on the server end of a pipe
type fakeMPV struct {
	t    *testing.T
	conn net.Conn

	writeMu sync.Mutex

	mu       sync.Mutex
	commands [][]any
	// handlers override the default success reply per command name.  Returning false sends no reply.
	handlers map[string]func(req mpvRequest) bool
}

func newFakeMPV(t *testing.T) (*fakeMPV, net.Conn) {
	server, client := net.Pipe()
	f := &fakeMPV{t: t, conn: server, handlers: make(map[string]func(mpvRequest) bool)}
	go f.serve()
	t.Cleanup(func() { _ = server.Close() })
	return f, client
}

func (f *fakeMPV) handle(name string, fn func(req mpvRequest) bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = fn
}

func (f *fakeMPV) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var req mpvRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			f.t.Errorf("fake mpv got invalid request %q: %v", scanner.Text(), err)
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		handler := f.handlers[fmt.Sprint(req.Command[0])]
		f.mu.Unlock()

		if handler != nil && !handler(req) {
			continue
		}
		f.reply(req.RequestID, "success", nil)
	}
}

func (f *fakeMPV) reply(id int, status string, data any) {
	f.send(map[string]any{"request_id": id, "error": status, "data": data})
}

func (f *fakeMPV) send(msg any) {
	data, err := json.Marshal(msg)
	require.NoError(f.t, err)

	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_, _ = f.conn.Write(append(data, '\n'))
}

func (f *fakeMPV) Commands() [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]any(nil), f.commands...)
}

func (f *fakeMPV) hasCommand(args ...any) bool {
	for _, cmd := range f.Commands() {
		if assert.ObjectsAreEqual(args, cmd) {
			return true
		}
	}
	return false
}

func TestIPCRequest(t *testing.T) {
	fake, conn := newFakeMPV(t)
	client := NewMPVIPCClient(conn, time.Second)
	defer client.Close()

	fake.handle("get_property", func(req mpvRequest) bool {
		fake.reply(req.RequestID, "success", 42.5)
		return false
	})

	data, err := client.Request(context.Background(), "get_property", "time-pos")
	require.NoError(t, err)
	assert.JSONEq(t, "42.5", string(data))

	require.NoError(t, client.SetProperty(context.Background(), "pause", true))
	assert.True(t, fake.hasCommand("set_property", "pause", true))
}

func TestIPCRequestError(t *testing.T) {
	fake, conn := newFakeMPV(t)
	client := NewMPVIPCClient(conn, time.Second)
	defer client.Close()

	fake.handle("get_property", func(req mpvRequest) bool {
		fake.reply(req.RequestID, "property unavailable", nil)
		return false
	})

	_, err := client.Request(context.Background(), "get_property", "duration")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property unavailable")
}

func TestIPCRequestTimeout(t *testing.T) {
	fake, conn := newFakeMPV(t)
	client := NewMPVIPCClient(conn, 50*time.Millisecond)
	defer client.Close()

	fake.handle("seek", func(mpvRequest) bool { return false })

	_, err := client.Request(context.Background(), "seek", 10, "absolute+exact")
	assert.ErrorIs(t, err, ErrIPCTimeout)
}

func TestIPCEventsAndClose(t *testing.T) {
	fake, conn := newFakeMPV(t)
	client := NewMPVIPCClient(conn, time.Second)

	go fake.send(map[string]any{"event": "property-change", "id": 2, "name": "time-pos", "data": 3.5})

	select {
	case msg := <-client.Events():
		assert.Equal(t, "property-change", msg.Event)
		assert.Equal(t, "time-pos", msg.Name)
		assert.JSONEq(t, "3.5", string(msg.Data))
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	require.NoError(t, client.Close())
	_, err := client.Request(context.Background(), "get_property", "pause")
	assert.Error(t, err)

	assert.Eventually(t, func() bool {
		_, open := <-client.Events()
		return !open
	}, time.Second, 5*time.Millisecond)
}

func TestTranslateMessage(t *testing.T) {
	var state propertyState
	prop := func(name string, data any) MPVMessage {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		return MPVMessage{Event: "property-change", Name: name, Data: raw}
	}

	assert.Equal(t, []playback.Event{playback.LoadEvent{}}, translateMessage(&state, MPVMessage{Event: "file-loaded"}))
	assert.True(t, state.loaded)

	assert.Equal(t, []playback.Event{playback.BufferEvent{IsBuffering: true}},
		translateMessage(&state, prop("paused-for-cache", true)))
	assert.Empty(t, translateMessage(&state, prop("paused-for-cache", true)), "repeated value is not a transition")
	assert.Equal(t, []playback.Event{playback.BufferEvent{IsBuffering: false}},
		translateMessage(&state, prop("paused-for-cache", false)))

	assert.Empty(t, translateMessage(&state, prop("time-pos", 30.0)))
	assert.Empty(t, translateMessage(&state, prop("duration", 120.0)))
	assert.Empty(t, translateMessage(&state, prop("demuxer-cache-time", 150.0)))
	assert.Equal(t, playback.ProgressSnapshot{CurrentTime: 30, PlayableDuration: 120, BufferedPosition: 120},
		state.snapshot(), "seekable duration stays zero until mpv reports the stream seekable")

	translateMessage(&state, prop("seekable", true))
	assert.Equal(t, 120.0, state.snapshot().SeekableDuration)

	assert.Empty(t, translateMessage(&state, MPVMessage{Event: "property-change", Name: "time-pos", Data: json.RawMessage("null")}))
	assert.Equal(t, 30.0, state.timePos)

	tracks := translateMessage(&state, prop("track-list", []map[string]any{
		{"type": "video", "id": 1, "demux-w": 1280, "demux-h": 720, "hls-bitrate": 2500000},
		{"type": "audio", "id": 1},
		{"type": "video", "id": 2, "demux-w": 1920, "demux-h": 1080, "demux-bitrate": 5000000},
	}))
	assert.Equal(t, []playback.Event{playback.TracksChangedEvent{VideoTracks: []playback.VideoTrack{
		{Height: 720, Width: 1280, Bitrate: 2500000},
		{Height: 1080, Width: 1920, Bitrate: 5000000},
	}}}, tracks)

	assert.Equal(t, []playback.Event{playback.BandwidthEvent{Bitrate: 1800000}},
		translateMessage(&state, prop("video-bitrate", 1800000.0)))

	errEvents := translateMessage(&state, MPVMessage{Event: "end-file", Reason: "error", FileError: "loading failed"})
	require.Len(t, errEvents, 1)
	engineErr := errEvents[0].(playback.ErrorEvent).Err
	assert.Equal(t, playback.ErrorKindSource, engineErr.Kind)
	assert.Equal(t, "loading failed", engineErr.Message)

	assert.Empty(t, translateMessage(&state, MPVMessage{Event: "end-file", Reason: "eof"}))
}

func TestBuildArgs(t *testing.T) {
	cfg := &config.Config{
		Player: config.PlayerConfig{Args: `--volume=50 --title="my video"`},
		Playback: config.PlaybackConfig{
			MaxBitrate: 2000000,
			Buffer: config.BufferConfig{
				MinBufferMs:                      15000,
				MaxBufferMs:                      50000,
				BufferForPlaybackMs:              2500,
				BufferForPlaybackAfterRebufferMs: 5000,
				ForwardBufferSeconds:             10,
			},
		},
	}

	args := buildArgs(cfg, "/tmp/vidctl.sock", "https://example.com/v.m3u8", playback.LaunchOptions{})
	assert.Equal(t, []string{
		"--no-terminal",
		"--idle=yes",
		"--pause",
		"--keep-open=yes",
		"--input-ipc-server=/tmp/vidctl.sock",
		"--cache=yes",
		"--cache-secs=50",
		"--demuxer-hysteresis-secs=15",
		"--demuxer-readahead-secs=10",
		"--cache-pause-wait=5",
		"--cache-pause-initial=yes",
		"--hls-bitrate=2000000",
		"--volume=50",
		"--title=my video",
		"https://example.com/v.m3u8",
	}, args)

	args = buildArgs(&config.Config{}, "/tmp/s", "file.mp4", playback.LaunchOptions{AutoPIP: true})
	assert.Contains(t, args, "--window-minimized=yes")
	assert.Equal(t, "file.mp4", args[len(args)-1])
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"--fs", []string{"--fs"}},
		{"  --fs   --volume=50 ", []string{"--fs", "--volume=50"}},
		{`--title="two words"`, []string{"--title=two words"}},
		{`--title='it"s'`, []string{`--title=it"s`}},
		{`""`, []string{""}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseArgs(tt.input), "ParseArgs(%q)", tt.input)
	}
}

// startEngine attaches an engine to a fake mpv and collects its events
func startEngine(t *testing.T) (*MPVEngine, *fakeMPV, func() []playback.Event) {
	t.Helper()
	fake, conn := newFakeMPV(t)
	engine := newMPVEngine(NewMPVIPCClient(conn, time.Second), "https://example.com/v.m3u8", 10*time.Millisecond)
	require.NoError(t, engine.start(context.Background()))

	var mu sync.Mutex
	var events []playback.Event
	go func() {
		for ev := range engine.Events() {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() { _ = engine.Close() })

	return engine, fake, func() []playback.Event {
		mu.Lock()
		defer mu.Unlock()
		return append([]playback.Event(nil), events...)
	}
}

func TestMPVEngineObservesAndTranslates(t *testing.T) {
	_, fake, events := startEngine(t)

	for _, p := range observedProperties {
		assert.True(t, fake.hasCommand("observe_property", float64(p.id), p.name), p.name)
	}

	fake.send(map[string]any{"event": "file-loaded"})
	fake.send(map[string]any{"event": "property-change", "name": "paused-for-cache", "data": true})
	fake.send(map[string]any{"event": "property-change", "name": "time-pos", "data": 12.0})

	assert.Eventually(t, func() bool {
		var loaded, buffering, progress bool
		for _, ev := range events() {
			switch ev := ev.(type) {
			case playback.LoadEvent:
				loaded = true
			case playback.BufferEvent:
				buffering = ev.IsBuffering
			case playback.ProgressEvent:
				progress = progress || ev.CurrentTime == 12
			}
		}
		return loaded && buffering && progress
	}, time.Second, 5*time.Millisecond)
}

func TestMPVEngineCommands(t *testing.T) {
	engine, fake, _ := startEngine(t)

	require.NoError(t, engine.Play())
	assert.True(t, fake.hasCommand("set_property", "pause", false))

	require.NoError(t, engine.Pause())
	assert.True(t, fake.hasCommand("set_property", "pause", true))

	require.NoError(t, engine.SetMaxBitrate(0))
	assert.True(t, fake.hasCommand("set_property", "hls-bitrate", "max"))
	require.NoError(t, engine.SetMaxBitrate(800000))
	assert.True(t, fake.hasCommand("set_property", "hls-bitrate", float64(800000)))

	require.NoError(t, engine.Reload(context.Background()))
	assert.True(t, fake.hasCommand("loadfile", "https://example.com/v.m3u8", "replace"))

	assert.ErrorIs(t, engine.EnterPictureInPicture(), playback.ErrUnsupportedPIP)
	assert.False(t, engine.Capabilities().PictureInPicture)
}

func TestMPVEngineSeekWaitsForRestart(t *testing.T) {
	engine, fake, _ := startEngine(t)

	fake.handle("seek", func(req mpvRequest) bool {
		fake.reply(req.RequestID, "success", nil)
		fake.send(map[string]any{"event": "playback-restart"})
		return false
	})

	require.NoError(t, engine.Seek(context.Background(), 42, 0))
	assert.True(t, fake.hasCommand("seek", float64(42), "absolute+exact"))

	require.NoError(t, engine.Seek(context.Background(), 50, time.Second))
	assert.True(t, fake.hasCommand("seek", float64(50), "absolute+keyframes"))
}

func TestMPVEngineSeekCancelled(t *testing.T) {
	engine, _, _ := startEngine(t)

	// No playback-restart ever arrives
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, engine.Seek(ctx, 10, 0), context.DeadlineExceeded)
}

func TestMPVEngineTimeoutBecomesEngineError(t *testing.T) {
	fake, conn := newFakeMPV(t)
	engine := newMPVEngine(NewMPVIPCClient(conn, 50*time.Millisecond), "https://example.com/v.m3u8", time.Hour)
	require.NoError(t, engine.start(context.Background()))
	t.Cleanup(func() { _ = engine.Close() })

	fake.handle("set_property", func(mpvRequest) bool { return false })
	assert.ErrorIs(t, engine.Play(), ErrIPCTimeout)

	select {
	case ev := <-engine.Events():
		require.IsType(t, playback.ErrorEvent{}, ev)
		assert.Equal(t, playback.ErrorKindTimeout, ev.(playback.ErrorEvent).Err.Kind)
	case <-time.After(time.Second):
		t.Fatal("no error event")
	}
}

func TestMPVEngineClose(t *testing.T) {
	fake, conn := newFakeMPV(t)
	engine := newMPVEngine(NewMPVIPCClient(conn, time.Second), "https://example.com/v.m3u8", time.Hour)
	require.NoError(t, engine.start(context.Background()))

	require.NoError(t, engine.Close())
	assert.True(t, fake.hasCommand("quit"))

	_, open := <-engine.Events()
	assert.False(t, open)
	require.NoError(t, engine.Close())
}

func TestNewLauncher(t *testing.T) {
	for _, playerType := range []string{"mpv", "", "vlc"} {
		launcher, err := NewLauncher(&config.Config{Player: config.PlayerConfig{Type: playerType}})
		require.NoError(t, err, playerType)
		assert.IsType(t, &MPVLauncher{}, launcher, playerType)
	}

	_, err := NewLauncher(&config.Config{Player: config.PlayerConfig{Type: "custom"}})
	assert.Error(t, err)
}
