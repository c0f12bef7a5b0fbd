package player

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/amethyst/internal/testutil"
)

func TestCanDecode(t *testing.T) {
	for _, path := range []string{
		"/m/a.mp3", "/m/a.FLAC", "/m/a.wav", "/m/a.ogg",
		"/m/a.opus", "/m/a.aac", "/m/a.m4a", "/m/a.aiff",
	} {
		assert.True(t, CanDecode(path), path)
	}
	assert.False(t, CanDecode("/m/a.wma"))
	assert.False(t, CanDecode("/m/a"))
}

func TestDecodeBytes_WAV(t *testing.T) {
	samples := make([]float64, 8000)
	data := testutil.WAV(samples, 8000)

	s, format, err := DecodeBytes("fixture.wav", data)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 8000, int(format.SampleRate))
	assert.Equal(t, 8000, s.Len())
	assert.Equal(t, time.Second, format.SampleRate.D(s.Len()))
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	_, _, err := DecodeBytes("song.wma", []byte("data"))

	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestSkipID3v2(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantPos int64
	}{
		{
			name:    "no tag",
			data:    []byte("fLaC0000000000"),
			wantPos: 0,
		},
		{
			name:    "tag with syncsafe size",
			data:    append([]byte{'I', 'D', '3', 4, 0, 0, 0, 0, 1, 0}, make([]byte, 200)...),
			wantPos: 10 + 128,
		},
		{
			name:    "short input",
			data:    []byte("ID3"),
			wantPos: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			require.NoError(t, skipID3v2(r))
			pos, err := r.Seek(0, io.SeekCurrent)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, pos)
		})
	}
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	_, err := Open("/music/song.wma")

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/does/not/exist.mp3")

	assert.Error(t, err)
}

func sine(n, rate int, freq float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return samples
}

// drain reads s to the end and returns the frame count and peak amplitude.
func drain(s beep.Streamer) (total int, peak float64) {
	buf := make([][2]float64, 1024)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			peak = max(peak, math.Abs(f[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestDecodeBytes_Opus(t *testing.T) {
	data := testutil.OggOpus(t, sine(48000, 48000, 440))

	for _, name := range []string{"tone.opus", "tone.ogg"} {
		t.Run(name, func(t *testing.T) {
			s, format, err := DecodeBytes(name, data)
			require.NoError(t, err)
			defer s.Close()

			assert.Equal(t, 48000, int(format.SampleRate))
			assert.Equal(t, 48000, s.Len())

			total, peak := drain(s)
			assert.Equal(t, 48000, total)
			assert.Greater(t, peak, 0.1)
			assert.NoError(t, s.Err())
		})
	}
}

func TestOpusSeek(t *testing.T) {
	s, _, err := DecodeBytes("tone.opus", testutil.OggOpus(t, sine(48000, 48000, 440)))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Seek(24000))
	assert.Equal(t, 24000, s.Position())

	total, peak := drain(s)
	assert.Equal(t, 24000, total)
	assert.Equal(t, 48000, s.Position())
	assert.Greater(t, peak, 0.1)

	require.NoError(t, s.Seek(0))
	assert.Equal(t, 0, s.Position())
}

func TestDecodeBytes_AIFF(t *testing.T) {
	samples := sine(8000, 8000, 100)
	s, format, err := DecodeBytes("tone.aiff", testutil.AIFF(samples, 8000))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 8000, int(format.SampleRate))
	assert.Equal(t, 8000, s.Len())

	buf := make([][2]float64, 100)
	n, ok := s.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 100, n)
	for i := range n {
		assert.InDelta(t, samples[i], buf[i][0], 1e-3)
		assert.Equal(t, buf[i][0], buf[i][1])
	}

	require.NoError(t, s.Seek(7990))
	total, _ := drain(s)
	assert.Equal(t, 10, total)
}

// adtsFrame builds a 44.1 kHz stereo AAC-LC ADTS frame of the given length.
func adtsFrame(length int) []byte {
	f := make([]byte, length)
	f[0] = 0xFF
	f[1] = 0xF1
	f[2] = 0x50
	f[3] = 0x80 | byte(length>>11)&0x03
	f[4] = byte(length >> 3)
	f[5] = byte(length&0x07)<<5 | 0x1F
	f[6] = 0xFC
	return f
}

func TestScanADTSFrames(t *testing.T) {
	var data []byte
	for range 3 {
		data = append(data, adtsFrame(20)...)
	}
	data = append(data, "trailing junk"...)

	frames, err := scanADTSFrames(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 20, 40}, frames)
}

func TestDecode_CorruptContainers(t *testing.T) {
	for _, name := range []string{"x.aac", "x.m4a", "x.opus", "x.aiff"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeBytes(name, []byte("definitely not audio"))
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func TestDecode_RequiresSeekable(t *testing.T) {
	_, _, err := Decode("x.m4a", io.NopCloser(bytes.NewReader(nil)))

	assert.ErrorIs(t, err, errNotSeekable)
}
