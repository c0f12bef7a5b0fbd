package player

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	speakerOnce       sync.Once
	speakerSampleRate beep.SampleRate
	errSpeakerInit    error
)

// initSpeaker initializes the output once, at the rate of the first track.
func initSpeaker(rate beep.SampleRate) error {
	speakerOnce.Do(func() {
		speakerSampleRate = rate
		errSpeakerInit = speaker.Init(rate, rate.N(time.Second/10))
	})
	return errSpeakerInit
}

// BeepTransport plays one file through the shared beep speaker.
type BeepTransport struct {
	mu       sync.Mutex
	state    State
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64

	finished     chan struct{}
	finishedOnce sync.Once
}

// Verify BeepTransport implements Transport at compile time.
var _ Transport = (*BeepTransport)(nil)

// NewBeepOpener returns an Opener that decodes files with beep.
func NewBeepOpener() Opener {
	return func(path string) (Transport, error) {
		return Open(path)
	}
}

// Open decodes path and connects it, paused, to the speaker.
func Open(path string) (*BeepTransport, error) {
	if !CanDecode(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	streamer, format, err := Decode(path, f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := initSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		return nil, fmt.Errorf("init speaker: %w", err)
	}

	t := &BeepTransport{
		state:    Paused,
		streamer: streamer,
		format:   format,
		level:    1,
		finished: make(chan struct{}),
	}

	// Resample if the track's sample rate differs from the speaker's
	var playStreamer beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		playStreamer = beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	}
	t.ctrl = &beep.Ctrl{Streamer: playStreamer, Paused: true}
	t.volume = &effects.Volume{Streamer: t.ctrl, Base: 2, Volume: 0, Silent: false}

	speaker.Play(beep.Seq(t.volume, beep.Callback(t.signalFinished)))

	return t, nil
}

// signalFinished runs on the speaker goroutine with the speaker lock held.
func (t *BeepTransport) signalFinished() {
	if t.state == Stopped {
		return
	}
	t.finishedOnce.Do(func() { close(t.finished) })
}

// Play starts or resumes output.
func (t *BeepTransport) Play() {
	t.setPaused(false, Playing)
}

// Pause halts output, keeping the position.
func (t *BeepTransport) Pause() {
	t.setPaused(true, Paused)
}

func (t *BeepTransport) setPaused(paused bool, next State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped {
		return
	}
	speaker.Lock()
	t.ctrl.Paused = paused
	t.state = next
	speaker.Unlock()
}

// State returns the transport state.
func (t *BeepTransport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Seek moves the position by delta, clamped to the stream.
func (t *BeepTransport) Seek(delta time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped {
		return
	}

	speaker.Lock()
	defer speaker.Unlock()
	newPos := t.streamer.Position() + t.format.SampleRate.N(delta)
	newPos = max(min(newPos, t.streamer.Len()-1), 0)
	_ = t.streamer.Seek(newPos)
}

// SetVolume sets the output level (0.0 to 1.0).
func (t *BeepTransport) SetVolume(level float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = level
	if t.state == Stopped {
		return
	}
	speaker.Lock()
	t.volume.Volume = levelToVolume(level)
	t.volume.Silent = level <= 0
	speaker.Unlock()
}

// Position returns the current playback position.
func (t *BeepTransport) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return t.format.SampleRate.D(t.streamer.Position())
}

// Duration returns the total track length.
func (t *BeepTransport) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped {
		return 0
	}
	return t.format.SampleRate.D(t.streamer.Len())
}

// Finished is closed at the natural end of the track.
func (t *BeepTransport) Finished() <-chan struct{} {
	return t.finished
}

// Close detaches the track from the speaker and releases the file.
func (t *BeepTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Stopped {
		return nil
	}

	speaker.Lock()
	t.state = Stopped
	t.ctrl.Paused = true
	// A nil streamer makes the sequence end; signalFinished sees Stopped.
	t.ctrl.Streamer = nil
	speaker.Unlock()

	return t.streamer.Close()
}
