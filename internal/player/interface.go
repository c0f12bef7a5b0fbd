// internal/player/interface.go
package player

import (
	"errors"
	"time"
)

// ErrUnsupportedFormat is returned when no decoder handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Transport is a single loaded track on the audio output.
// A new Transport is opened for every load and closed on teardown;
// it is never reused for another file.
type Transport interface {
	Play()
	Pause()
	State() State
	Seek(delta time.Duration)
	SetVolume(level float64)
	Position() time.Duration
	Duration() time.Duration
	// Finished is closed when the track reaches its natural end.
	Finished() <-chan struct{}
	Close() error
}

// Opener loads path into a new paused Transport connected to the output.
type Opener func(path string) (Transport, error)
