// Package tempo estimates the beats per minute of a track.
package tempo

import (
	"errors"
	"math"
	"sort"
)

// Tempo range that estimates are folded into.
const (
	MinBPM = 90
	MaxBPM = 180
)

const (
	lowpassHz     = 150.0
	partSeconds   = 0.5
	neighbours    = 10
	keepPeakRatio = 0.5
)

// ErrNoTempo is returned when no periodic peaks are found.
var ErrNoTempo = errors.New("no tempo found")

type peak struct {
	index  int
	volume float64
}

// Detect estimates the tempo of mono samples.
// Samples are low-pass filtered, the loudest peak of every half second is
// kept, and the intervals between the loudest of them vote for a tempo
// folded into [MinBPM, MaxBPM].
func Detect(samples []float64, sampleRate int) (float64, error) {
	if sampleRate <= 0 {
		return 0, errors.New("tempo: invalid sample rate")
	}

	filtered := lowpass(samples, float64(sampleRate), lowpassHz)
	peaks := pickPeaks(filtered, int(partSeconds*float64(sampleRate)))
	if len(peaks) < 2 {
		return 0, ErrNoTempo
	}

	votes := make(map[int]int)
	for i := range peaks {
		for j := 1; j <= neighbours && i+j < len(peaks); j++ {
			interval := peaks[i+j].index - peaks[i].index
			if interval <= 0 {
				continue
			}
			bpm := 60 * float64(sampleRate) / float64(interval)
			votes[int(math.Round(fold(bpm)))]++
		}
	}

	best, bestVotes := 0, 0
	for bpm, n := range votes {
		if n > bestVotes || (n == bestVotes && bpm < best) {
			best, bestVotes = bpm, n
		}
	}
	if bestVotes == 0 {
		return 0, ErrNoTempo
	}
	return float64(best), nil
}

// fold doubles or halves bpm until it lies in [MinBPM, MaxBPM].
func fold(bpm float64) float64 {
	for bpm < MinBPM {
		bpm *= 2
	}
	for bpm > MaxBPM {
		bpm /= 2
	}
	return bpm
}

// pickPeaks returns the loudest sample of every part, keeping the louder
// half of them in time order. Silent parts are dropped.
func pickPeaks(samples []float64, partSize int) []peak {
	if partSize < 1 {
		partSize = 1
	}

	var peaks []peak
	for start := 0; start < len(samples); start += partSize {
		end := min(start+partSize, len(samples))
		p := peak{index: -1}
		for i := start; i < end; i++ {
			if v := math.Abs(samples[i]); v > p.volume {
				p = peak{index: i, volume: v}
			}
		}
		if p.index >= 0 {
			peaks = append(peaks, p)
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].volume > peaks[j].volume })
	keep := int(math.Ceil(float64(len(peaks)) * keepPeakRatio))
	peaks = peaks[:keep]
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].index < peaks[j].index })
	return peaks
}

// lowpass applies a second-order Butterworth low-pass filter.
func lowpass(samples []float64, rate, cutoff float64) []float64 {
	w0 := 2 * math.Pi * cutoff / rate
	alpha := math.Sin(w0) / math.Sqrt2 // Q = 1/sqrt(2)
	cos := math.Cos(w0)

	a0 := 1 + alpha
	b0 := (1 - cos) / 2 / a0
	b1 := (1 - cos) / a0
	b2 := b0
	a1 := -2 * cos / a0
	a2 := (1 - alpha) / a0

	out := make([]float64, len(samples))
	var x1, x2, y1, y2 float64
	for i, x := range samples {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		out[i] = y
	}
	return out
}
