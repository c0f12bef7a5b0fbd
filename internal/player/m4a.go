package player

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

const alacFrameSize = 4096

var errM4ACodec = errors.New("m4a: unsupported codec")

// m4aDecoder reads samples from an MP4 container and decodes them with
// go-faad2 (AAC) or alac (Apple Lossless).
type m4aDecoder struct {
	container *m4a.Reader
	closer    io.Closer
	codec     m4a.CodecType
	aac       *faad2.Decoder
	alac      *alac.Alac

	channels   int
	sampleSize int

	next   int // next container sample to read
	frames [][2]float64
	offset int
	length int
	err    error
}

func decodeM4A(rsc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rsc)
	if err != nil {
		return nil, beep.Format{}, err
	}

	sampleRate := container.SampleRate()
	d := &m4aDecoder{
		container:  container,
		closer:     rsc,
		codec:      container.Codec(),
		channels:   max(int(container.Channels()), 1),
		sampleSize: int(container.SampleSize()),
		length:     int(container.Duration().Seconds() * float64(sampleRate)),
	}

	precision := 2
	switch d.codec {
	case m4a.CodecAAC:
		ctx := context.Background()
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(ctx, container.CodecConfig()); err != nil {
			_ = dec.Close(ctx)
			return nil, beep.Format{}, err
		}
		d.aac = dec
	case m4a.CodecALAC:
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  int(sampleRate),
			SampleSize:  d.sampleSize,
			NumChannels: d.channels,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		d.alac = dec
		if d.sampleSize == 24 {
			precision = 3
		}
	default:
		return nil, beep.Format{}, errM4ACodec
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   precision,
	}
	return d, format, nil
}

func (d *m4aDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if d.offset < len(d.frames) {
			c := copy(samples[n:], d.frames[d.offset:])
			d.offset += c
			n += c
			continue
		}
		if d.next >= d.container.SampleCount() {
			break
		}
		if err := d.decodeNext(); err != nil {
			d.err = err
			break
		}
	}
	return n, n > 0
}

// decodeNext decodes one container sample into the frame buffer.
func (d *m4aDecoder) decodeNext() error {
	data, err := d.container.ReadSample(d.next)
	if err != nil {
		return err
	}
	d.next++
	d.offset = 0

	switch {
	case d.aac != nil:
		pcm, err := d.aac.Decode(context.Background(), data)
		if err != nil {
			return err
		}
		d.frames = growFrames(d.frames, len(pcm)/d.channels)
		pcm16ToFrames(d.frames, pcm, d.channels)
	case d.alac != nil:
		d.frames = alacToFrames(d.frames[:0], d.alac.Decode(data), d.channels, d.sampleSize)
	}
	return nil
}

func growFrames(frames [][2]float64, n int) [][2]float64 {
	if cap(frames) < n {
		return make([][2]float64, n)
	}
	return frames[:n]
}

// alacToFrames converts little-endian 16 or 24-bit PCM into stereo frames.
func alacToFrames(dst [][2]float64, data []byte, channels, bits int) [][2]float64 {
	width := 2
	scale := float64(1 << 15)
	if bits == 24 {
		width = 3
		scale = float64(1 << 23)
	}
	sample := func(b []byte) float64 {
		if width == 2 {
			return float64(int16(binary.LittleEndian.Uint16(b))) / scale //nolint:gosec // two's complement reinterpretation
		}
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / scale
	}

	stride := width * channels
	n := len(data) / stride
	dst = growFrames(dst, n)
	for i := range n {
		frame := data[i*stride:]
		left := sample(frame)
		right := left
		if channels >= 2 {
			right = sample(frame[width:])
		}
		dst[i] = [2]float64{left, right}
	}
	return dst
}

func (d *m4aDecoder) Err() error { return d.err }
func (d *m4aDecoder) Len() int   { return d.length }

func (d *m4aDecoder) Position() int {
	t := d.container.SampleTime(d.next)
	pos := int(t.Seconds()*float64(d.container.SampleRate())) - (len(d.frames) - d.offset)
	return max(pos, 0)
}

func (d *m4aDecoder) Seek(p int) error {
	p = max(0, min(p, d.length))
	at := time.Duration(float64(p) / float64(d.container.SampleRate()) * float64(time.Second))
	d.next = d.container.SeekToTime(at)
	d.frames = d.frames[:0]
	d.offset = 0
	d.err = nil
	return nil
}

func (d *m4aDecoder) Close() error {
	if d.aac != nil {
		_ = d.aac.Close(context.Background())
	}
	return d.closer.Close()
}
