package player

import (
	"encoding/json"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
	"github.com/samber/lo"
)

// Observed properties and the ids they are registered with
var observedProperties = []struct {
	id   int
	name string
}{
	{1, "paused-for-cache"},
	{2, "time-pos"},
	{3, "duration"},
	{4, "demuxer-cache-time"},
	{5, "seekable"},
	{6, "track-list"},
	{7, "video-bitrate"},
}

// mpvTrack is the subset of a track-list entry the engine cares about
type mpvTrack struct {
	Type         string `json:"type"`
	ID           int    `json:"id"`
	DemuxWidth   int    `json:"demux-w"`
	DemuxHeight  int    `json:"demux-h"`
	DemuxBitrate int    `json:"demux-bitrate"`
	HLSBitrate   int    `json:"hls-bitrate"`
}

// propertyState accumulates the observed properties progress reports are built from
type propertyState struct {
	loaded    bool
	buffering bool
	timePos   float64
	duration  float64
	cacheTime float64
	seekable  bool
}

// snapshot builds a progress report.  Unseekable streams report a zero seekable duration.
func (p *propertyState) snapshot() playback.ProgressSnapshot {
	s := playback.ProgressSnapshot{
		CurrentTime:      p.timePos,
		PlayableDuration: p.duration,
		BufferedPosition: p.cacheTime,
	}
	if p.seekable {
		s.SeekableDuration = p.duration
	}
	if p.duration > 0 {
		s.BufferedPosition = min(p.cacheTime, p.duration)
	}
	return s
}

// translateMessage updates state from one mpv message and returns the playback events it amounts to
func translateMessage(state *propertyState, msg MPVMessage) []playback.Event {
	switch msg.Event {
	case "file-loaded":
		state.loaded = true
		return []playback.Event{playback.LoadEvent{}}

	case "end-file":
		if msg.Reason != "error" {
			log.Debug("MPV file ended", "reason", msg.Reason)
			return nil
		}
		message := msg.FileError
		if message == "" {
			message = "playback ended with an error"
		}
		return []playback.Event{playback.ErrorEvent{Err: playback.EngineError{
			Kind:      playback.ErrorKindSource,
			Message:   message,
			Exception: msg.Reason,
		}}}

	case "property-change":
		return translateProperty(state, msg)
	}

	log.Trace("Ignoring MPV event", "event", msg.Event)
	return nil
}

func translateProperty(state *propertyState, msg MPVMessage) []playback.Event {
	// mpv sends no data while a property is unavailable
	if len(msg.Data) == 0 || string(msg.Data) == "null" {
		return nil
	}

	switch msg.Name {
	case "paused-for-cache":
		var buffering bool
		if !decode(msg, &buffering) || buffering == state.buffering {
			return nil
		}
		state.buffering = buffering
		return []playback.Event{playback.BufferEvent{IsBuffering: buffering}}

	case "time-pos":
		decode(msg, &state.timePos)
	case "duration":
		decode(msg, &state.duration)
	case "demuxer-cache-time":
		decode(msg, &state.cacheTime)
	case "seekable":
		decode(msg, &state.seekable)

	case "track-list":
		var tracks []mpvTrack
		if !decode(msg, &tracks) {
			return nil
		}
		return []playback.Event{playback.TracksChangedEvent{VideoTracks: videoTracks(tracks)}}

	case "video-bitrate":
		var bitrate float64
		if !decode(msg, &bitrate) {
			return nil
		}
		return []playback.Event{playback.BandwidthEvent{Bitrate: int(bitrate)}}
	}
	return nil
}

func videoTracks(tracks []mpvTrack) []playback.VideoTrack {
	video := lo.Filter(tracks, func(t mpvTrack, _ int) bool { return t.Type == "video" })
	return lo.Map(video, func(t mpvTrack, _ int) playback.VideoTrack {
		bitrate := t.HLSBitrate
		if bitrate == 0 {
			bitrate = t.DemuxBitrate
		}
		return playback.VideoTrack{Height: t.DemuxHeight, Width: t.DemuxWidth, Bitrate: bitrate}
	})
}

func decode(msg MPVMessage, target any) bool {
	if err := json.Unmarshal(msg.Data, target); err != nil {
		log.Warn("Failed to unmarshal property data", "name", msg.Name, "data", string(msg.Data), "error", err)
		return false
	}
	return true
}
