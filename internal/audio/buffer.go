package audio

import (
	"fmt"

	"github.com/andreaessedj/analyzer/internal/domain"
)

// Buffer holds a fully decoded recording, one sample slice per channel.
// Channels are equal length and samples are linear amplitude in [-1, 1].
type Buffer struct {
	Channels [][]float64
	Rate     int
}

// Validate rejects structurally malformed buffers: no channels, a
// non-positive sample rate, empty channels or ragged channel lengths.
func (b Buffer) Validate() error {
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", domain.ErrDecodeMismatch)
	}
	if b.Rate <= 0 {
		return fmt.Errorf("%w: sample rate %d", domain.ErrDecodeMismatch, b.Rate)
	}
	n := len(b.Channels[0])
	if n == 0 {
		return fmt.Errorf("%w: channel without samples", domain.ErrDecodeMismatch)
	}
	for i, ch := range b.Channels {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d holds %d samples, channel 0 holds %d",
				domain.ErrDecodeMismatch, i, len(ch), n)
		}
	}
	return nil
}

// Downmix averages all channels sample-wise into a single analysis channel.
// Every downstream feature is computed on this one signal.
func (b Buffer) Downmix() []float64 {
	if len(b.Channels) == 0 {
		return nil
	}
	if len(b.Channels) == 1 {
		return b.Channels[0]
	}
	out := make([]float64, len(b.Channels[0]))
	for _, ch := range b.Channels {
		for i, s := range ch {
			out[i] += s
		}
	}
	inv := 1.0 / float64(len(b.Channels))
	for i := range out {
		out[i] *= inv
	}
	return out
}

// Seconds reports the recording length.
func (b Buffer) Seconds() float64 {
	if b.Rate <= 0 || len(b.Channels) == 0 {
		return 0
	}
	return float64(len(b.Channels[0])) / float64(b.Rate)
}
