package playback

import (
	"fmt"
	"math"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/samber/mo"
)

// Handle is the control surface a host uses to drive a session.  Every method only queues an intent: none of them
// block on the engine, panic, or return an error.  Failures are logged.
type Handle struct {
	session *Session
}

// Seek asks for an exact seek to seconds.  Non-finite values are rejected before anything is queued.
func (h *Handle) Seek(seconds float64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		h.logger().Error("Error seeking video", "error", ErrInvalidSeekTarget, "target", seconds)
		return
	}
	h.send(SeekRequested{Seconds: seconds})
}

// SeekRelative seeks delta seconds from the current position, clamped to the seekable range
func (h *Handle) SeekRelative(delta float64) {
	h.send(SeekRelative{Delta: delta})
}

// SeekForward seeks one configured step forward
func (h *Handle) SeekForward(step float64) {
	h.SeekRelative(math.Abs(step))
}

// SeekBackward seeks one configured step backward
func (h *Handle) SeekBackward(step float64) {
	h.SeekRelative(-math.Abs(step))
}

func (h *Handle) RequestPlay() {
	h.send(PlayRequested{})
}

func (h *Handle) TogglePlay() {
	h.send(TogglePlay{})
}

func (h *Handle) Pause() {
	h.send(PauseRequested{})
}

func (h *Handle) Resume() {
	h.send(ResumeRequested{})
}

func (h *Handle) EnterPictureInPicture() {
	h.send(PIPRequested{})
}

func (h *Handle) ToggleControls() {
	h.send(ToggleControls{})
}

// SelectQuality caps playback at option's bitrate
func (h *Handle) SelectQuality(option QualityOption) {
	h.send(QualityRequested{Option: mo.Some(option)})
}

// SelectAutoQuality hands rendition selection back to the engine
func (h *Handle) SelectAutoQuality() {
	h.send(QualityRequested{Option: mo.None[QualityOption]()})
}

func (h *Handle) send(ev Event) {
	if h == nil || h.session == nil {
		h.logger().Warn("Intent dropped", "intent", fmt.Sprintf("%T", ev), "error", ErrSessionClosed)
		return
	}
	if err := h.session.post(ev); err != nil {
		h.logger().Warn("Intent dropped", "intent", fmt.Sprintf("%T", ev), "error", err)
	}
}

func (h *Handle) logger() *log.Logger {
	if h == nil || h.session == nil {
		return log.DefaultLogger()
	}
	return h.session.logger
}
