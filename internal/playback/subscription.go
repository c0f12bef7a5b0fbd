package playback

import (
	"sync/atomic"
	"time"
)

const eventBufferSize = 16

// Subscription delivers service events. Each channel is buffered; when a
// subscriber falls behind, new events for that channel are dropped and
// counted rather than stalling the service.
type Subscription struct {
	StateChanged    <-chan StateChange
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	QueueChanged    <-chan QueueChange
	VolumeChanged   <-chan VolumeChange
	Error           <-chan ErrorEvent
	// Done is closed when the service shuts down.
	Done <-chan struct{}

	states    chan StateChange
	tracks    chan TrackChange
	positions chan PositionChange
	queues    chan QueueChange
	volumes   chan VolumeChange
	errs      chan ErrorEvent
	done      chan struct{}

	dropped atomic.Uint64
}

func newSubscription() *Subscription {
	s := &Subscription{
		states:    make(chan StateChange, eventBufferSize),
		tracks:    make(chan TrackChange, eventBufferSize),
		positions: make(chan PositionChange, eventBufferSize),
		queues:    make(chan QueueChange, eventBufferSize),
		volumes:   make(chan VolumeChange, eventBufferSize),
		errs:      make(chan ErrorEvent, eventBufferSize),
		done:      make(chan struct{}),
	}
	s.StateChanged = s.states
	s.TrackChanged = s.tracks
	s.PositionChanged = s.positions
	s.QueueChanged = s.queues
	s.VolumeChanged = s.volumes
	s.Error = s.errs
	s.Done = s.done
	return s
}

// Dropped returns how many events were discarded because a buffer was full.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription) close() {
	close(s.done)
}

func offer[E any](s *Subscription, ch chan E, e E) {
	select {
	case ch <- e:
	default:
		s.dropped.Add(1)
	}
}

func (s *Subscription) sendState(e StateChange)   { offer(s, s.states, e) }
func (s *Subscription) sendTrack(e TrackChange)   { offer(s, s.tracks, e) }
func (s *Subscription) sendQueue(e QueueChange)   { offer(s, s.queues, e) }
func (s *Subscription) sendVolume(e VolumeChange) { offer(s, s.volumes, e) }
func (s *Subscription) sendError(e ErrorEvent)    { offer(s, s.errs, e) }

func (s *Subscription) sendPosition(pos time.Duration) {
	offer(s, s.positions, PositionChange{Position: pos})
}
