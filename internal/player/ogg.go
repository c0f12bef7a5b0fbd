package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

const (
	oggHeaderSize   = 27
	oggContinued    = 0x01
	oggNoGranule    = -1
	opusHeadMagic   = "OpusHead"
	opusHeadMinSize = 19
)

type oggPageHeader struct {
	headerType uint8
	granule    int64
	segments   []uint8
}

func (h *oggPageHeader) bodySize() int64 {
	var n int64
	for _, s := range h.segments {
		n += int64(s)
	}
	return n
}

func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [oggHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	if string(buf[0:4]) != "OggS" {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		headerType: buf[5],
		granule:    int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // -1 marks pages without a granule
		segments:   make([]uint8, buf[26]),
	}
	// checksum at buf[22:26] is not verified
	if _, err := io.ReadFull(r, hdr.segments); err != nil {
		return nil, err
	}
	return hdr, nil
}

// oggReader yields the packets of a single logical Ogg stream.
type oggReader struct {
	r         io.ReadSeeker
	queue     [][]byte
	partial   []byte
	dataStart int64
}

func newOggReader(r io.ReadSeeker) *oggReader {
	return &oggReader{r: r}
}

// readPage reads the next page and queues its completed packets.
func (o *oggReader) readPage() (*oggPageHeader, error) {
	hdr, err := parseOggPageHeader(o.r)
	if err != nil {
		return nil, err
	}
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(o.r, body); err != nil {
		return nil, err
	}

	if hdr.headerType&oggContinued == 0 {
		o.partial = nil
	}

	var start, size int
	for _, lace := range hdr.segments {
		size += int(lace)
		if lace == 255 {
			continue
		}
		packet := append(o.partial, body[start:start+size]...)
		o.partial = nil
		o.queue = append(o.queue, packet)
		start += size
		size = 0
	}
	if size > 0 {
		o.partial = append(o.partial, body[start:start+size]...)
	}
	return hdr, nil
}

// nextPacket returns the next complete packet, or io.EOF.
func (o *oggReader) nextPacket() ([]byte, error) {
	for len(o.queue) == 0 {
		if _, err := o.readPage(); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}
	}
	p := o.queue[0]
	o.queue = o.queue[1:]
	return p, nil
}

// markDataStart records the current offset as the first audio page.
func (o *oggReader) markDataStart() error {
	off, err := o.r.Seek(0, io.SeekCurrent)
	o.dataStart = off
	return err
}

func (o *oggReader) reset(offset int64) error {
	o.queue = nil
	o.partial = nil
	_, err := o.r.Seek(offset, io.SeekStart)
	return err
}

// scanPages walks page headers from the first audio page, skipping bodies.
// fn receives each page's offset and header; returning false stops the walk.
func (o *oggReader) scanPages(fn func(offset int64, hdr *oggPageHeader) bool) error {
	if err := o.reset(o.dataStart); err != nil {
		return err
	}
	offset := o.dataStart
	for {
		hdr, err := parseOggPageHeader(o.r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !fn(offset, hdr) {
			return nil
		}
		next, err := o.r.Seek(hdr.bodySize(), io.SeekCurrent)
		if err != nil {
			return err
		}
		offset = next
	}
}

// lastGranule returns the highest granule position in the stream.
func (o *oggReader) lastGranule() (int64, error) {
	var last int64
	err := o.scanPages(func(_ int64, hdr *oggPageHeader) bool {
		if hdr.granule != oggNoGranule {
			last = max(last, hdr.granule)
		}
		return true
	})
	return last, err
}

// seekGranule positions the reader on the first page whose packets end at
// or after target. It returns the granule the page's first full packet
// starts at.
func (o *oggReader) seekGranule(target int64) (int64, error) {
	pageOffset, prev := o.dataStart, int64(0)
	var found bool
	err := o.scanPages(func(offset int64, hdr *oggPageHeader) bool {
		if hdr.granule == oggNoGranule {
			return true
		}
		if hdr.granule >= target {
			pageOffset = offset
			found = true
			return false
		}
		prev = hdr.granule
		return true
	})
	if err != nil {
		return 0, err
	}
	if !found {
		pageOffset = o.dataStart
		prev = 0
	}
	if err := o.reset(pageOffset); err != nil {
		return 0, err
	}
	// a packet continued from the previous page cannot be decoded alone
	hdr, err := o.readPage()
	if err != nil {
		return 0, err
	}
	if hdr.headerType&oggContinued != 0 && len(o.queue) > 0 {
		o.queue = o.queue[1:]
	}
	return prev, nil
}

// isOggOpus reports whether the first packet of the stream is an Opus header.
// The reader is rewound either way.
func isOggOpus(r io.ReadSeeker) bool {
	defer func() { _, _ = r.Seek(0, io.SeekStart) }()
	hdr, err := parseOggPageHeader(r)
	if err != nil {
		return false
	}
	magic := make([]byte, len(opusHeadMagic))
	if hdr.bodySize() < int64(len(magic)) {
		return false
	}
	if _, err := io.ReadFull(r, magic); err != nil {
		return false
	}
	return bytes.Equal(magic, []byte(opusHeadMagic))
}
