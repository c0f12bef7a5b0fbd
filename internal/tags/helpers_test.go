package tags

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testTag holds the frames written by createTestMP3.
type testTag struct {
	Title    string
	Artist   string
	Album    string
	CoverArt []byte
}

// createTestMP3 writes a file holding only an ID3v2.3 tag.
func createTestMP3(t *testing.T, dir string, tag *testTag) string {
	t.Helper()

	var frames bytes.Buffer
	textFrame := func(id, value string) {
		if value == "" {
			return
		}
		writeFrame(&frames, id, append([]byte{0}, value...))
	}
	textFrame("TIT2", tag.Title)
	textFrame("TPE1", tag.Artist)
	textFrame("TALB", tag.Album)
	if tag.CoverArt != nil {
		var apic bytes.Buffer
		apic.WriteByte(0)
		apic.WriteString(mimeJPEG)
		apic.WriteByte(0)
		apic.WriteByte(3) // front cover
		apic.WriteByte(0) // empty description
		apic.Write(tag.CoverArt)
		writeFrame(&frames, "APIC", apic.Bytes())
	}

	size := frames.Len()
	header := []byte{
		'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f), byte(size & 0x7f),
	}

	path := filepath.Join(dir, "track.mp3")
	data := append(header, frames.Bytes()...)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write test mp3: %v", err)
	}
	return path
}

func writeFrame(buf *bytes.Buffer, id string, body []byte) {
	buf.WriteString(id)
	_ = binary.Write(buf, binary.BigEndian, uint32(len(body))) //nolint:gosec // small fixtures
	buf.Write([]byte{0, 0})
	buf.Write(body)
}
