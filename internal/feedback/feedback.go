package feedback

import (
	"strings"

	"github.com/andreaessedj/analyzer/internal/analyzer"
	"github.com/andreaessedj/analyzer/internal/domain"
)

// Thresholds bound the advisory rules. Units match the corresponding
// Features fields.
type Thresholds struct {
	QuietLoudness float64
	ClipPeak      float64
	NarrowSpread  float64
}

// DefaultThresholds returns the stock rule bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		QuietLoudness: 0.01,
		ClipPeak:      0.9,
		NarrowSpread:  10,
	}
}

// Notes emitted by Classify, in rule order.
const (
	NoteQuiet  = "track too quiet"
	NoteClip   = "clipping risk"
	NoteNarrow = "stereo field narrow"
	NoteOK     = "mix ok on average"
)

// Classify evaluates every rule in a fixed order and appends one note per
// hit. When nothing fires the single ok note is returned, so the result is
// never empty.
func Classify(f analyzer.Features, t Thresholds) []string {
	var notes []string
	if f.Loudness < t.QuietLoudness {
		notes = append(notes, NoteQuiet)
	}
	if f.Peak > t.ClipPeak {
		notes = append(notes, NoteClip)
	}
	if f.SpectralSpread < t.NarrowSpread {
		notes = append(notes, NoteNarrow)
	}
	if len(notes) == 0 {
		notes = append(notes, NoteOK)
	}
	return notes
}

// Assemble flattens features and notes into the persisted record shape,
// joining notes with a single space in classifier order.
func Assemble(trackID string, f analyzer.Features, notes []string) (domain.FeedbackRecord, error) {
	if strings.TrimSpace(trackID) == "" {
		return domain.FeedbackRecord{}, domain.ErrEmptyTrackID
	}
	return domain.FeedbackRecord{
		TrackID:        trackID,
		Loudness:       f.Loudness,
		Peak:           f.Peak,
		SpectralSpread: f.SpectralSpread,
		FreqBalance:    domain.FreqBalance{Low: f.Low, Mid: f.Mid, High: f.High},
		Notes:          strings.Join(notes, " "),
	}, nil
}
