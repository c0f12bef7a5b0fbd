package player

import (
	"errors"
	"io"

	"github.com/go-audio/aiff"
	"github.com/gopxl/beep/v2"
)

var errAIFFEmpty = errors.New("aiff: no sound data")

// pcmStreamer plays fully decoded frames from memory.
type pcmStreamer struct {
	frames [][2]float64
	pos    int
	closer io.Closer
}

func (s *pcmStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	n = copy(samples, s.frames[s.pos:])
	s.pos += n
	return n, n > 0
}

func (s *pcmStreamer) Err() error    { return nil }
func (s *pcmStreamer) Len() int      { return len(s.frames) }
func (s *pcmStreamer) Position() int { return s.pos }

func (s *pcmStreamer) Seek(p int) error {
	s.pos = max(0, min(p, len(s.frames)))
	return nil
}

func (s *pcmStreamer) Close() error { return s.closer.Close() }

// decodeAIFF loads the whole sound chunk; AIFF is uncompressed PCM.
func decodeAIFF(rsc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	buf, err := aiff.NewDecoder(rsc).FullPCMBuffer()
	if err != nil {
		return nil, beep.Format{}, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, beep.Format{}, errAIFFEmpty
	}

	channels := buf.Format.NumChannels
	bits := buf.SourceBitDepth
	if bits <= 0 {
		bits = 16
	}
	scale := float64(int64(1) << (bits - 1))

	frames := make([][2]float64, len(buf.Data)/channels)
	for i := range frames {
		left := float64(buf.Data[i*channels]) / scale
		right := left
		if channels >= 2 {
			right = float64(buf.Data[i*channels+1]) / scale
		}
		frames[i] = [2]float64{left, right}
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(buf.Format.SampleRate),
		NumChannels: 2,
		Precision:   min(max(bits/8, 1), 3),
	}
	return &pcmStreamer{frames: frames, closer: rsc}, format, nil
}
