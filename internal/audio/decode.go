package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/andreaessedj/analyzer/internal/domain"
)

// Decode reads a complete audio stream into a Buffer. The hint picks the
// container by extension; unrecognized hints are decoded as WAV, the default
// suffix of uploaded sources.
func Decode(r io.Reader, hint string) (Buffer, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch normalizeExt(hint) {
	case ".mp3":
		stream, format, err = mp3.Decode(io.NopCloser(r))
	case ".flac":
		stream, format, err = flac.Decode(r)
	case ".ogg", ".oga":
		stream, format, err = vorbis.Decode(io.NopCloser(r))
	default:
		stream, format, err = wav.Decode(r)
	}
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	defer stream.Close()
	return drain(stream, format)
}

// DecodeFile decodes path, picking the decoder from the file extension.
func DecodeFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	defer f.Close()
	return Decode(f, filepath.Ext(path))
}

// drain pulls every frame out of the stream. Decoders report mono and stereo
// only; mono sources carry the same value on both lanes, so lane 0 suffices.
func drain(stream beep.Streamer, format beep.Format) (Buffer, error) {
	stereo := format.NumChannels >= 2
	nch := 1
	if stereo {
		nch = 2
	}
	chans := make([][]float64, nch)
	frame := make([][2]float64, 512)
	for {
		n, ok := stream.Stream(frame)
		for i := 0; i < n; i++ {
			chans[0] = append(chans[0], frame[i][0])
			if stereo {
				chans[1] = append(chans[1], frame[i][1])
			}
		}
		if !ok {
			break
		}
	}
	if err := stream.Err(); err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if len(chans[0]) == 0 {
		return Buffer{}, fmt.Errorf("%w: stream holds no samples", domain.ErrDecode)
	}
	return Buffer{Channels: chans, Rate: int(format.SampleRate)}, nil
}

func normalizeExt(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return ".wav"
	}
	if !strings.HasPrefix(hint, ".") {
		hint = "." + hint
	}
	return hint
}
