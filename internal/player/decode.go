package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

var errNotSeekable = errors.New("decoder needs a seekable stream")

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extOPUS = ".opus"
	extAAC  = ".aac"
	extM4A  = ".m4a"
	extAIFF = ".aiff"
)

// CanDecode reports whether path has an extension the transport can play.
func CanDecode(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extWAV, extOGG, extOPUS, extAAC, extM4A, extAIFF:
		return true
	}
	return false
}

// Decode picks a decoder from the extension of path and decodes rc.
// The returned streamer owns rc and closes it on Close.
func Decode(path string, rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case extMP3:
		return mp3.Decode(rc)
	case extFLAC:
		// Some taggers prepend an ID3v2 tag the FLAC decoder doesn't handle
		if rs, ok := rc.(io.ReadSeeker); ok {
			if err := skipID3v2(rs); err != nil {
				rc.Close()
				return nil, beep.Format{}, err
			}
		}
		s, format, err := flac.Decode(rc)
		if err != nil {
			rc.Close()
		}
		return s, format, err
	case extWAV:
		s, format, err := wav.Decode(rc)
		if err != nil {
			rc.Close()
		}
		return s, format, err
	case extOGG:
		if rs, ok := rc.(io.ReadSeekCloser); ok && isOggOpus(rs) {
			return decodeSeekable(rc, decodeOpus)
		}
		return vorbis.Decode(rc)
	case extOPUS:
		return decodeSeekable(rc, decodeOpus)
	case extAAC:
		return decodeSeekable(rc, decodeAAC)
	case extM4A:
		return decodeSeekable(rc, decodeM4A)
	case extAIFF:
		return decodeSeekable(rc, decodeAIFF)
	}
	rc.Close()
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

type seekableDecoder func(io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)

// decodeSeekable runs a decoder that needs random access and closes rc
// when decoding fails.
func decodeSeekable(rc io.ReadCloser, decode seekableDecoder) (beep.StreamSeekCloser, beep.Format, error) {
	rsc, ok := rc.(io.ReadSeekCloser)
	if !ok {
		rc.Close()
		return nil, beep.Format{}, errNotSeekable
	}
	s, format, err := decode(rsc)
	if err != nil {
		rc.Close()
		return nil, beep.Format{}, err
	}
	return s, format, nil
}

// skipID3v2 skips an ID3v2 tag if present at the beginning of the stream.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && n < 10 {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	if string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// Size is a syncsafe integer: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])

	_, err = r.Seek(10+size, io.SeekStart)
	return err
}

// DecodeBytes decodes an in-memory file, choosing the decoder from path.
func DecodeBytes(path string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	return Decode(path, nopSeekCloser{bytes.NewReader(data)})
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
