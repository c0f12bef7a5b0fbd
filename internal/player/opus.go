package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/jj11hh/opus"
)

const (
	opusSampleRate = 48000
	opusMaxFrame   = 5760 // 120 ms at 48 kHz
	opusPreRoll    = 3840 // 80 ms
)

// opusDecoder streams an Ogg/Opus file through jj11hh/opus.
type opusDecoder struct {
	ogg      *oggReader
	decoder  *opus.Decoder
	closer   io.Closer
	channels int
	preSkip  int

	buf    []float32
	pcm    []float32
	pcmPos int
	skip   int // frames to drop before emitting

	pos    int
	length int
	err    error
}

func decodeOpus(rsc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	ogg := newOggReader(rsc)

	head, err := ogg.nextPacket()
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("opus header: %w", err)
	}
	if len(head) < opusHeadMinSize || string(head[:len(opusHeadMagic)]) != opusHeadMagic {
		return nil, beep.Format{}, errors.New("opus: missing OpusHead")
	}
	channels := int(head[9])
	if channels < 1 || channels > 2 {
		return nil, beep.Format{}, fmt.Errorf("opus: unsupported channel count %d", channels)
	}
	preSkip := int(binary.LittleEndian.Uint16(head[10:12]))

	// comment header, possibly spanning several pages
	if _, err := ogg.nextPacket(); err != nil {
		return nil, beep.Format{}, fmt.Errorf("opus tags: %w", err)
	}
	if err := ogg.markDataStart(); err != nil {
		return nil, beep.Format{}, err
	}

	last, err := ogg.lastGranule()
	if err != nil {
		return nil, beep.Format{}, err
	}
	if err := ogg.reset(ogg.dataStart); err != nil {
		return nil, beep.Format{}, err
	}

	decoder, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, beep.Format{}, err
	}

	d := &opusDecoder{
		ogg:      ogg,
		decoder:  decoder,
		closer:   rsc,
		channels: channels,
		preSkip:  preSkip,
		buf:      make([]float32, opusMaxFrame*channels),
		skip:     preSkip,
		length:   max(int(last)-preSkip, 0),
	}
	format := beep.Format{SampleRate: opusSampleRate, NumChannels: 2, Precision: 2}
	return d, format, nil
}

func (d *opusDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}
	for n < len(samples) && d.pos < d.length {
		if d.pcmPos >= len(d.pcm) {
			packet, err := d.ogg.nextPacket()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					d.err = err
				}
				return n, n > 0
			}
			frames, err := d.decoder.DecodeFloat32(packet, d.buf)
			if err != nil {
				// corrupt packets are skipped
				continue
			}
			d.pcm = d.buf[:frames*d.channels]
			d.pcmPos = 0
			continue
		}

		left := float64(d.pcm[d.pcmPos])
		right := left
		if d.channels == 2 {
			right = float64(d.pcm[d.pcmPos+1])
		}
		d.pcmPos += d.channels

		if d.skip > 0 {
			d.skip--
			continue
		}
		samples[n] = [2]float64{left, right}
		n++
		d.pos++
	}
	return n, n > 0
}

func (d *opusDecoder) Err() error    { return d.err }
func (d *opusDecoder) Len() int      { return d.length }
func (d *opusDecoder) Position() int { return d.pos }

// Seek restarts decoding a little before p so the decoder converges, then
// drops frames up to p.
func (d *opusDecoder) Seek(p int) error {
	p = max(0, min(p, d.length))
	start, err := d.ogg.seekGranule(int64(max(p-opusPreRoll, 0) + d.preSkip))
	if err != nil {
		return err
	}
	d.pcm = nil
	d.pcmPos = 0
	d.skip = max(p+d.preSkip-int(start), 0)
	d.pos = p
	d.err = nil
	return nil
}

func (d *opusDecoder) Close() error {
	return d.closer.Close()
}
