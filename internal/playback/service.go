package playback

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/player"
	"github.com/llehouerou/amethyst/internal/playlist"
	"github.com/llehouerou/amethyst/internal/presence"
	"github.com/llehouerou/amethyst/internal/state"
	"github.com/llehouerou/amethyst/internal/tags"
)

// Service defines the playback service contract.
//
// Every queue or index mutation is followed by a sync step: the currently
// playing path is recomputed when the queue length or the index changed,
// and a different path loads a fresh transport. Operations never fail;
// boundary moves and loads of an empty path are no-ops.
type Service interface {
	// Playback control
	Play()
	Pause()
	Toggle()
	SeekForward(step time.Duration)  // step <= 0 uses the configured step
	SeekBackward(step time.Duration) // step <= 0 uses the configured step
	SetVolume(level float64)
	VolumeUp(amount float64)   // amount <= 0 uses the configured step
	VolumeDown(amount float64) // amount <= 0 uses the configured step

	// Queue navigation
	Next(skip int)
	Previous(skip int)
	SetIndex(i int)

	// Queue manipulation
	SetQueue(entries ...playlist.Entry)
	LoadFolder(files []string) // files go in front of the existing queue
	PrependAndSelect(path string) bool
	Clear()
	Shuffle()
	Restore(tracks []string, index int) // load without autoplay

	// Queue history
	Undo() bool
	Redo() bool

	// State queries
	State() State
	CurrentPath() string
	Snapshot() Snapshot
	Metadata() *tags.Metadata

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Snapshot is a consistent copy of the service state.
type Snapshot struct {
	State    State
	Path     string
	Index    int
	Tracks   []string
	Volume   float64
	Position time.Duration
	Duration time.Duration
	Metadata *tags.Metadata
}

// Enricher computes derived data for tracks in the background.
type Enricher interface {
	Enrich(ctx context.Context, path string) bool
	EnrichAll(ctx context.Context, paths []string) int
}

// Persister stores the fields restored at startup.
type Persister interface {
	SaveVolume(volume float64) error
	SaveCurrentPath(path string) error
	SaveQueue(q state.QueueState)
}

// Options configures a Service. Only Opener is required.
type Options struct {
	Opener       player.Opener
	ReadMetadata func(path string) (*tags.Metadata, error)
	Presence     presence.Reporter
	Tempo        Enricher // triggered with the whole queue when its length changes
	Artwork      Enricher // triggered with each loaded track
	Persister    Persister
	Logger       *log.Logger
	Rand         *rand.Rand

	Volume       float64 // initial level in [0, 1]
	SeekStep     time.Duration
	VolumeStep   float64
	TickInterval time.Duration
	HistorySize  int
}

const (
	defaultSeekStep     = 5 * time.Second
	defaultVolumeStep   = 0.1
	defaultTickInterval = time.Second
	defaultHistorySize  = 50
)

func (o *Options) applyDefaults() {
	if o.SeekStep <= 0 {
		o.SeekStep = defaultSeekStep
	}
	if o.VolumeStep <= 0 {
		o.VolumeStep = defaultVolumeStep
	}
	if o.TickInterval <= 0 {
		o.TickInterval = defaultTickInterval
	}
	if o.HistorySize <= 0 {
		o.HistorySize = defaultHistorySize
	}
	o.Volume = clampVolume(o.Volume)
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}
