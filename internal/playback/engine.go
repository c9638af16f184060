package playback

import (
	"context"
	"time"
)

// Engine is the external decoder/renderer a session controls.  Implementations report what happens through Events,
// which must be closed when the engine stops.
type Engine interface {
	Events() <-chan Event
	Capabilities() Capabilities

	Play() error
	Pause() error
	// Seek moves to an absolute position.  A zero tolerance asks for an exact seek.  It returns once the engine
	// has settled on the new position or ctx is done.
	Seek(ctx context.Context, seconds float64, tolerance time.Duration) error
	EnterPictureInPicture() error
	// SetMaxBitrate caps the rendition the engine picks.  Zero restores automatic selection.
	SetMaxBitrate(bitrate int) error
	// Reload loads the session's video URL again
	Reload(ctx context.Context) error

	Close() error
}

// LaunchOptions are passed to a Launcher when the first play request arrives
type LaunchOptions struct {
	AutoPIP bool
}

// Launcher creates an engine for a video URL
type Launcher interface {
	Launch(ctx context.Context, url string, opts LaunchOptions) (Engine, error)
}

// LauncherFunc adapts a function to Launcher
type LauncherFunc func(ctx context.Context, url string, opts LaunchOptions) (Engine, error)

func (f LauncherFunc) Launch(ctx context.Context, url string, opts LaunchOptions) (Engine, error) {
	return f(ctx, url, opts)
}
