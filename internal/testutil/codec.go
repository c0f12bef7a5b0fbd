package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/bits"
	"testing"

	"github.com/jj11hh/opus"
)

const (
	// OpusPreSkip is the pre-skip written into OggOpus headers.
	OpusPreSkip = 312

	opusRate  = 48000
	opusFrame = 960 // 20 ms
)

// OggOpus encodes mono 48 kHz samples in [-1, 1] as an Ogg/Opus file,
// one packet per page.
func OggOpus(t testing.TB, samples []float64) []byte {
	t.Helper()
	enc, err := opus.NewEncoder(opusRate, 1, opus.AppAudio)
	if err != nil {
		t.Fatalf("opus encoder: %v", err)
	}

	head := []byte("OpusHead")
	head = append(head, 1, 1)
	head = binary.LittleEndian.AppendUint16(head, OpusPreSkip)
	head = binary.LittleEndian.AppendUint32(head, opusRate)
	head = append(head, 0, 0, 0)

	vendor := "amethyst"
	tags := []byte("OpusTags")
	tags = binary.LittleEndian.AppendUint32(tags, uint32(len(vendor))) //nolint:gosec // constant
	tags = append(tags, vendor...)
	tags = binary.LittleEndian.AppendUint32(tags, 0)

	var out bytes.Buffer
	out.Write(oggPage(0x02, 0, 0, head))
	out.Write(oggPage(0, 0, 1, tags))

	// granules count decoded samples including pre-skip; the last page
	// trims the padding so the stream holds exactly len(samples)
	end := OpusPreSkip + len(samples)
	pcm := make([]int16, opusFrame)
	packet := make([]byte, 4000)
	seq := uint32(2)
	for start := 0; start < end; start += opusFrame {
		clear(pcm)
		for i := range pcm {
			if j := start + i - OpusPreSkip; j >= 0 && j < len(samples) {
				pcm[i] = int16(max(-1, min(1, samples[j])) * math.MaxInt16)
			}
		}
		n, err := enc.Encode(pcm, packet)
		if err != nil {
			t.Fatalf("opus encode: %v", err)
		}

		var flags byte
		if start+opusFrame >= end {
			flags = 0x04
		}
		out.Write(oggPage(flags, int64(min(start+opusFrame, end)), seq, packet[:n]))
		seq++
	}
	return out.Bytes()
}

// oggPage frames a single packet shorter than 255*255 bytes as one page.
func oggPage(flags byte, granule int64, seq uint32, packet []byte) []byte {
	lacing := bytes.Repeat([]byte{255}, len(packet)/255)
	lacing = append(lacing, byte(len(packet)%255))

	page := []byte("OggS")
	page = append(page, 0, flags)
	page = binary.LittleEndian.AppendUint64(page, uint64(granule)) //nolint:gosec // non-negative
	page = binary.LittleEndian.AppendUint32(page, 1)
	page = binary.LittleEndian.AppendUint32(page, seq)
	page = binary.LittleEndian.AppendUint32(page, 0)
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, packet...)
	binary.LittleEndian.PutUint32(page[22:26], oggCRC(page))
	return page
}

var oggCRCTable = func() (table [256]uint32) {
	for i := range table {
		r := uint32(i) << 24 //nolint:gosec // i < 256
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		table[i] = r
	}
	return table
}()

func oggCRC(page []byte) uint32 {
	var crc uint32
	for _, b := range page {
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

// AIFF encodes mono samples in [-1, 1] as a 16-bit AIFF file.
func AIFF(samples []float64, sampleRate int) []byte {
	data := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		v := int16(max(-1, min(1, s)) * math.MaxInt16)
		data = binary.BigEndian.AppendUint16(data, uint16(v)) //nolint:gosec // two's complement
	}

	var buf bytes.Buffer
	write := func(v any) { _ = binary.Write(&buf, binary.BigEndian, v) }
	buf.WriteString("FORM")
	write(uint32(4 + 8 + 18 + 16 + len(data))) //nolint:gosec // fixture sizes are small
	buf.WriteString("AIFF")

	buf.WriteString("COMM")
	write(uint32(18))
	write(int16(1))
	write(uint32(len(samples))) //nolint:gosec // fixture sizes are small
	write(int16(16))
	buf.Write(extended80(uint64(sampleRate))) //nolint:gosec // positive rate

	buf.WriteString("SSND")
	write(uint32(8 + len(data))) //nolint:gosec // fixture sizes are small
	write(uint32(0))
	write(uint32(0))
	buf.Write(data)
	return buf.Bytes()
}

// extended80 encodes an integer as an IEEE 754 80-bit extended float.
func extended80(v uint64) []byte {
	out := make([]byte, 10)
	if v == 0 {
		return out
	}
	shift := bits.LeadingZeros64(v)
	binary.BigEndian.PutUint16(out[:2], uint16(16383+63-shift)) //nolint:gosec // < 2^15
	binary.BigEndian.PutUint64(out[2:], v<<shift)
	return out
}
