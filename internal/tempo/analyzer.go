package tempo

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gopxl/beep/v2"

	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/player"
)

const decodeChunk = 8192

// Analyzer computes whole-track tempos from audio files.
type Analyzer struct {
	readFile func(string) ([]byte, error)
	logger   *log.Logger
}

// NewAnalyzer creates an Analyzer reading files from disk.
func NewAnalyzer(l *log.Logger) *Analyzer {
	return &Analyzer{readFile: os.ReadFile, logger: logger.Component(l, "tempo")}
}

// Analyze reads and decodes path, then returns its rounded tempo.
func (a *Analyzer) Analyze(ctx context.Context, path string) (int, error) {
	data, err := a.readFile(path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := player.DecodeBytes(path, data)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	a.logger.Debug("analyzing", "path", path, "size", humanize.Bytes(uint64(len(data))),
		"duration", format.SampleRate.D(streamer.Len()).Round(time.Second))

	samples, err := mono(ctx, streamer)
	if err != nil {
		return 0, err
	}

	bpm, err := Detect(samples, int(format.SampleRate))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return int(math.Round(bpm)), nil
}

// mono drains s into a single channel, checking ctx between chunks.
func mono(ctx context.Context, s beep.Streamer) ([]float64, error) {
	var out []float64
	if l, ok := s.(beep.StreamSeeker); ok && l.Len() > 0 {
		out = make([]float64, 0, l.Len())
	}

	buf := make([][2]float64, decodeChunk)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
