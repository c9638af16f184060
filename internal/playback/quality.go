package playback

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// QualityRegistry owns the quality options advertised by the engine and the current selection
type QualityRegistry struct {
	options  []QualityOption
	selected mo.Option[QualityOption]
}

// NewQualityRegistry creates an empty registry in automatic mode
func NewQualityRegistry() *QualityRegistry {
	return &QualityRegistry{selected: mo.None[QualityOption]()}
}

// Replace swaps the whole option set for the given tracks.  A selection that no longer exists falls back to automatic.
func (r *QualityRegistry) Replace(tracks []VideoTrack) {
	r.options = lo.Map(tracks, func(t VideoTrack, _ int) QualityOption {
		return QualityOption{Height: t.Height, Width: t.Width, Bitrate: t.Bitrate}
	})
	if sel, ok := r.selected.Get(); ok && !lo.Contains(r.options, sel) {
		r.selected = mo.None[QualityOption]()
	}
}

// Options returns a copy of the advertised options
func (r *QualityRegistry) Options() []QualityOption {
	return append([]QualityOption(nil), r.options...)
}

// Selected returns the selected option, or None in automatic mode
func (r *QualityRegistry) Selected() mo.Option[QualityOption] {
	return r.selected
}

// Select records option as the selection.  It must be one of the advertised options.
func (r *QualityRegistry) Select(option QualityOption) error {
	if !lo.Contains(r.options, option) {
		return fmt.Errorf("%w: %s", ErrUnknownQuality, option.Label())
	}
	r.selected = mo.Some(option)
	return nil
}

// SelectAuto returns to the engine's automatic quality selection
func (r *QualityRegistry) SelectAuto() {
	r.selected = mo.None[QualityOption]()
}

// Find resolves a user supplied label such as "720p" or "1080" to an option.  Exact label matches win, otherwise the
// closest fuzzy match is used.
func (r *QualityRegistry) Find(label string) (QualityOption, bool) {
	label = strings.TrimSpace(label)
	if label == "" || len(r.options) == 0 {
		return QualityOption{}, false
	}

	labels := lo.Map(r.options, func(o QualityOption, _ int) string { return o.Label() })
	for i, l := range labels {
		if strings.EqualFold(l, label) {
			return r.options[i], true
		}
	}

	ranks := fuzzy.RankFindFold(label, labels)
	if len(ranks) == 0 {
		return QualityOption{}, false
	}
	sort.Sort(ranks)
	return r.options[ranks[0].OriginalIndex], true
}
