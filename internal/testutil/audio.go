// Package testutil provides audio fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WAV encodes mono samples in [-1, 1] as a 16-bit PCM WAV file.
func WAV(samples []float64, sampleRate int) []byte {
	dataLen := len(samples) * 2
	var buf bytes.Buffer
	buf.Grow(44 + dataLen)

	write := func(v any) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	buf.WriteString("RIFF")
	write(uint32(36 + dataLen)) //nolint:gosec // fixture sizes are small
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1))              // PCM
	write(uint16(1))              // mono
	write(uint32(sampleRate))     //nolint:gosec // fixture rates are small
	write(uint32(sampleRate * 2)) //nolint:gosec // byte rate
	write(uint16(2))
	write(uint16(16))
	buf.WriteString("data")
	write(uint32(dataLen)) //nolint:gosec // fixture sizes are small

	for _, s := range samples {
		s = max(-1, min(1, s))
		write(int16(s * math.MaxInt16))
	}
	return buf.Bytes()
}

// ClickTrack renders short decaying low-frequency bursts at the given tempo.
// The first click lands at offset seconds.
func ClickTrack(bpm float64, seconds float64, sampleRate int, offset float64) []float64 {
	samples := make([]float64, int(seconds*float64(sampleRate)))
	interval := 60 / bpm
	burst := int(0.03 * float64(sampleRate))
	for beat := offset; beat < seconds; beat += interval {
		start := int(beat * float64(sampleRate))
		for i := 0; i < burst && start+i < len(samples); i++ {
			t := float64(i) / float64(sampleRate)
			decay := 1 - float64(i)/float64(burst)
			samples[start+i] = 0.9 * decay * math.Sin(2*math.Pi*60*t)
		}
	}
	return samples
}

// WriteWAV writes a WAV fixture under t.TempDir and returns its path.
func WriteWAV(t *testing.T, name string, samples []float64, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, WAV(samples, sampleRate), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
