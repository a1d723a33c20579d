package analyzer

import (
	"math"
	"sort"

	"github.com/mjibson/go-dsp/fft"
	"github.com/r9y9/gossp/window"

	"github.com/andreaessedj/analyzer/internal/audio"
)

// Band edges in Hz for the frequency balance split.
const (
	lowBandEdge = 200.0
	midBandEdge = 2000.0
)

// contrastEps keeps the peak-to-valley log ratio finite on silent bands, so
// silence scores a spread of exactly 0 instead of NaN.
const contrastEps = 1e-10

// Extractor computes loudness, peak, spectral spread and band balance from a
// decoded buffer. The window table is built once in New and never written
// afterwards, so a single Extractor is safe for concurrent requests.
type Extractor struct {
	frameLen int
	hopLen   int
	window   []float64
}

// Config controls the short-time analysis grid.
type Config struct {
	FrameLen int
	HopLen   int
}

// New creates an Extractor, defaulting to 2048-sample frames with a 512
// sample hop.
func New(cfg Config) *Extractor {
	if cfg.FrameLen <= 0 {
		cfg.FrameLen = 2048
	}
	if cfg.HopLen <= 0 {
		cfg.HopLen = 512
	}
	return &Extractor{
		frameLen: cfg.FrameLen,
		hopLen:   cfg.HopLen,
		window:   window.CreateHanning(cfg.FrameLen),
	}
}

// Extract derives the full feature set from buf. Degenerate input (silence,
// clips shorter than one frame) yields zero values, never an error; the only
// failure mode is a structurally malformed buffer.
func (e *Extractor) Extract(buf audio.Buffer) (Features, error) {
	if err := buf.Validate(); err != nil {
		return Features{}, err
	}
	mono := buf.Downmix()

	f := Features{
		Loudness: rms(mono),
		Peak:     peak(mono),
	}

	spec := e.spectrogram(mono)
	if len(spec) == 0 {
		return f, nil
	}

	resolution := float64(buf.Rate) / float64(e.frameLen)
	nyquist := float64(buf.Rate) / 2

	f.Low = bandMean(spec, resolution, 0, lowBandEdge)
	f.Mid = bandMean(spec, resolution, lowBandEdge, midBandEdge)
	f.High = bandMean(spec, resolution, midBandEdge, nyquist+resolution)
	f.SpectralSpread = spectralContrast(spec, resolution, nyquist)
	return f, nil
}

// spectrogram returns one-sided magnitude frames, bin k at k*rate/frameLen
// Hz with the Nyquist bin included. Only full frames are analyzed; signals
// shorter than one frame produce no frames.
func (e *Extractor) spectrogram(samples []float64) [][]float64 {
	if len(samples) < e.frameLen {
		return nil
	}
	frames := 1 + (len(samples)-e.frameLen)/e.hopLen
	half := e.frameLen/2 + 1
	out := make([][]float64, 0, frames)
	buffer := make([]complex128, e.frameLen)
	for start := 0; start+e.frameLen <= len(samples); start += e.hopLen {
		for i := 0; i < e.frameLen; i++ {
			buffer[i] = complex(samples[start+i]*e.window[i], 0)
		}
		res := fft.FFT(buffer)
		row := make([]float64, half)
		for k := 0; k < half; k++ {
			row[k] = cmag(res[k])
		}
		out = append(out, row)
	}
	return out
}

// bandMean averages magnitudes over every (bin, frame) cell whose frequency
// falls in [minHz, maxHz). A band without bins scores 0.
func bandMean(spec [][]float64, resolution, minHz, maxHz float64) float64 {
	if len(spec) == 0 || minHz >= maxHz {
		return 0
	}
	bins := len(spec[0])
	lo := int(math.Ceil(minHz / resolution))
	hi := int(math.Ceil(maxHz / resolution))
	if hi > bins {
		hi = bins
	}
	if lo >= hi {
		return 0
	}
	sum := 0.0
	for _, row := range spec {
		for _, v := range row[lo:hi] {
			sum += v
		}
	}
	return sum / float64((hi-lo)*len(spec))
}

// spectralContrast averages the per-frame log contrast between peak and
// valley energy over octave sub-bands fenced from 200 Hz up to Nyquist.
func spectralContrast(spec [][]float64, resolution, nyquist float64) float64 {
	edges := contrastEdges(nyquist)
	sum := 0.0
	count := 0
	for _, row := range spec {
		for b := 0; b+1 < len(edges); b++ {
			lo := int(math.Ceil(edges[b] / resolution))
			hi := int(math.Ceil(edges[b+1] / resolution))
			if hi > len(row) {
				hi = len(row)
			}
			if lo >= hi {
				continue
			}
			sum += contrast(row[lo:hi])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func contrastEdges(nyquist float64) []float64 {
	edges := []float64{0}
	for f := 200.0; f < nyquist; f *= 2 {
		edges = append(edges, f)
	}
	return append(edges, nyquist)
}

// contrast is the dB ratio between the mean of the strongest and weakest
// fifth of the band's bin energies.
func contrast(band []float64) float64 {
	energies := make([]float64, len(band))
	for i, m := range band {
		energies[i] = m * m
	}
	sort.Float64s(energies)
	q := len(energies) / 5
	if q < 1 {
		q = 1
	}
	valley := average(energies[:q])
	crest := average(energies[len(energies)-q:])
	return 10 * math.Log10((crest+contrastEps)/(valley+contrastEps))
}

// rms is the global root-mean-square, 0 for an empty sequence.
func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func peak(samples []float64) float64 {
	p := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > p {
			p = a
		}
	}
	return p
}

func cmag(c complex128) float64 {
	return math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
