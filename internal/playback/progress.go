package playback

import (
	"math"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ProgressReport is what the host observer receives on every progress event
type ProgressReport struct {
	ProgressSnapshot
	// Percentage is absent while the seekable duration is unknown
	Percentage mo.Option[float64]
}

// ProgressTracker owns the progress snapshot and stream info of a session.  It is only touched from the session
// goroutine, so the observer is called there too.
type ProgressTracker struct {
	snapshot ProgressSnapshot
	stream   StreamInfo
	observer func(ProgressReport)
}

// NewProgressTracker creates a tracker that forwards reports to observer, which may be nil
func NewProgressTracker(observer func(ProgressReport)) *ProgressTracker {
	return &ProgressTracker{observer: observer}
}

// Update replaces the snapshot wholesale and forwards it to the observer
func (t *ProgressTracker) Update(snapshot ProgressSnapshot) ProgressReport {
	t.snapshot = ProgressSnapshot{
		CurrentTime:      sanitizeSeconds(snapshot.CurrentTime),
		PlayableDuration: sanitizeSeconds(snapshot.PlayableDuration),
		SeekableDuration: sanitizeSeconds(snapshot.SeekableDuration),
		BufferedPosition: sanitizeSeconds(snapshot.BufferedPosition),
	}
	t.stream.CurrentTime = t.snapshot.CurrentTime
	t.stream.Duration = t.snapshot.SeekableDuration

	report := ProgressReport{
		ProgressSnapshot: t.snapshot,
		Percentage:       Percentage(t.snapshot),
	}
	if t.observer != nil {
		t.observer(report)
	}
	return report
}

// SetBitrate records a bandwidth update
func (t *ProgressTracker) SetBitrate(bitrate int) {
	t.stream.Bitrate = max(bitrate, 0)
}

// Snapshot returns the last progress snapshot
func (t *ProgressTracker) Snapshot() ProgressSnapshot {
	return t.snapshot
}

// Stream returns the current stream info
func (t *ProgressTracker) Stream() StreamInfo {
	return t.stream
}

// Percentage is currentTime/seekableDuration*100 limited to [0, 100], absent when the seekable duration is zero
func Percentage(s ProgressSnapshot) mo.Option[float64] {
	if s.SeekableDuration <= 0 {
		return mo.None[float64]()
	}
	return mo.Some(lo.Clamp(s.CurrentTime/s.SeekableDuration*100, 0, 100))
}

func sanitizeSeconds(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
