package main

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/PizzaHomicide/vidctl/internal/log"
	"github.com/PizzaHomicide/vidctl/internal/playback"
)

type progressLine struct {
	Type string `json:"type"`
	playback.ProgressSnapshot
	Percentage *float64 `json:"percentage,omitempty"`
}

type stateLine struct {
	Type      string `json:"type"`
	Phase     string `json:"phase"`
	Playing   bool   `json:"playing"`
	Buffering bool   `json:"buffering"`
	Seeking   bool   `json:"seeking"`
	Quality   string `json:"quality,omitempty"`
	Error     string `json:"error,omitempty"`
}

// jsonLines writes headless output.  Progress comes from the session goroutine and state from the subscriber, so
// writes are serialised.
type jsonLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONLines(w io.Writer) *jsonLines {
	return &jsonLines{enc: json.NewEncoder(w)}
}

func (j *jsonLines) write(v any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(v); err != nil {
		log.Warn("Failed to write headless output", "error", err)
	}
}

func (j *jsonLines) progress(report playback.ProgressReport) {
	line := progressLine{Type: "progress", ProgressSnapshot: report.ProgressSnapshot}
	if pct, ok := report.Percentage.Get(); ok {
		line.Percentage = &pct
	}
	j.write(line)
}

// states writes a line whenever the coarse state changes, until updates is closed
func (j *jsonLines) states(updates <-chan playback.ViewState) {
	var last stateLine
	for view := range updates {
		line := toStateLine(view)
		if line == last {
			continue
		}
		last = line
		j.write(line)
	}
}

func toStateLine(view playback.ViewState) stateLine {
	line := stateLine{
		Type:      "state",
		Phase:     view.Phase.String(),
		Playing:   view.IsPlaying(),
		Buffering: view.Buffering,
		Seeking:   view.Seeking,
		Error:     view.LastError,
	}
	if sel, ok := view.SelectedQuality.Get(); ok {
		line.Quality = sel.Label()
	}
	return line
}
