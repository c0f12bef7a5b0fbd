package player

import (
	"context"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-faad2"
)

const (
	adtsHeaderSize     = 7
	aacSamplesPerFrame = 1024 // AAC-LC
)

// aacDecoder streams a raw ADTS file through go-faad2. The first frame only
// primes the decoder, so output sample i belongs to frame 1 + i/1024.
type aacDecoder struct {
	rs       io.ReadSeekCloser
	reader   *faad2.ADTSReader
	frames   []int64 // byte offset of every ADTS frame
	channels int
	buf      []int16
	pos      int
	length   int
	err      error
}

func decodeAAC(rsc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	if err := skipID3v2(rsc); err != nil {
		return nil, beep.Format{}, err
	}
	frames, err := scanADTSFrames(rsc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if len(frames) == 0 {
		return nil, beep.Format{}, faad2.ErrADTSSyncNotFound
	}

	d := &aacDecoder{
		rs:     rsc,
		frames: frames,
		length: (len(frames) - 1) * aacSamplesPerFrame,
	}
	if err := d.open(0); err != nil {
		return nil, beep.Format{}, err
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(d.reader.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return d, format, nil
}

// scanADTSFrames walks ADTS headers from the current offset and records
// where each frame starts. Trailing garbage ends the walk.
func scanADTSFrames(rs io.ReadSeeker) ([]int64, error) {
	offset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	var (
		frames []int64
		hdr    [adtsHeaderSize]byte
	)
	for {
		if _, err := io.ReadFull(rs, hdr[:]); err != nil {
			break
		}
		_, _, size, err := faad2.ParseADTSHeader(hdr[:])
		if err != nil || size < adtsHeaderSize {
			break
		}
		frames = append(frames, offset)
		offset += int64(size)
		if _, err := rs.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

// open restarts the ADTS reader at frame idx.
func (d *aacDecoder) open(idx int) error {
	ctx := context.Background()
	if d.reader != nil {
		_ = d.reader.Close(ctx)
		d.reader = nil
	}
	if _, err := d.rs.Seek(d.frames[idx], io.SeekStart); err != nil {
		return err
	}
	reader, err := faad2.OpenADTS(ctx, d.rs)
	if err != nil {
		return err
	}
	d.reader = reader
	d.channels = max(int(reader.Channels()), 1)
	return nil
}

func (d *aacDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	want := min(len(samples), d.length-d.pos)
	if want <= 0 {
		return 0, false
	}
	need := want * d.channels
	if len(d.buf) < need {
		d.buf = make([]int16, need)
	}

	read, err := d.reader.Read(context.Background(), d.buf[:need])
	if err != nil && !errors.Is(err, io.EOF) {
		d.err = err
	}
	n = pcm16ToFrames(samples, d.buf[:read], d.channels)
	d.pos += n
	return n, n > 0
}

func (d *aacDecoder) Err() error    { return d.err }
func (d *aacDecoder) Len() int      { return d.length }
func (d *aacDecoder) Position() int { return d.pos }

// Seek reopens the stream on the frame holding p and decodes up to it.
func (d *aacDecoder) Seek(p int) error {
	p = max(0, min(p, d.length))
	frame := p / aacSamplesPerFrame
	if frame >= len(d.frames) {
		frame = len(d.frames) - 1
	}
	if err := d.open(frame); err != nil {
		return err
	}
	d.pos = frame * aacSamplesPerFrame
	d.err = nil

	discard := make([][2]float64, 512)
	for d.pos < p {
		n, ok := d.Stream(discard[:min(len(discard), p-d.pos)])
		if !ok || n == 0 {
			break
		}
	}
	return d.err
}

func (d *aacDecoder) Close() error {
	var err error
	if d.reader != nil {
		err = d.reader.Close(context.Background())
	}
	return errors.Join(err, d.rs.Close())
}

// pcm16ToFrames converts interleaved 16-bit samples into stereo frames.
// Mono input is duplicated on both channels.
func pcm16ToFrames(dst [][2]float64, pcm []int16, channels int) int {
	n := min(len(dst), len(pcm)/channels)
	for i := range n {
		left := float64(pcm[i*channels]) / 32768
		right := left
		if channels >= 2 {
			right = float64(pcm[i*channels+1]) / 32768
		}
		dst[i] = [2]float64{left, right}
	}
	return n
}
