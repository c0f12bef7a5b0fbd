// internal/playback/service_impl.go
package playback

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/player"
	"github.com/llehouerou/amethyst/internal/playlist"
	"github.com/llehouerou/amethyst/internal/presence"
	"github.com/llehouerou/amethyst/internal/state"
	"github.com/llehouerou/amethyst/internal/tags"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	mu sync.Mutex

	opts    Options
	logger  *log.Logger
	queue   *playlist.Queue
	history *playlist.History

	state       State
	currentPath string
	transport   player.Transport
	metadata    *tags.Metadata
	volume      float64

	// generation increments on every load; async results from older
	// generations are dropped
	generation uint64
	stopTicker context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subs   []*Subscription
	subsMu sync.RWMutex

	closed bool
}

// New creates a new playback service with an empty queue.
func New(opts Options) Service {
	return newService(opts)
}

func newService(opts Options) *serviceImpl {
	opts.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceImpl{
		opts:    opts,
		logger:  logger.Component(opts.Logger, "playback"),
		queue:   playlist.NewQueue(),
		history: playlist.NewHistory(opts.HistorySize),
		volume:  opts.Volume,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.history.Push(nil)
	return s
}

// mutate runs fn under the lock, then syncs the derived path.
// fn reports whether the queue contents changed.
func (s *serviceImpl) mutate(autoplay bool, fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	prevLen, prevIndex := s.queue.Len(), s.queue.CurrentIndex()
	queueChanged := fn()
	s.syncLocked(prevLen, prevIndex, queueChanged, autoplay)
}

// syncLocked recomputes the currently playing path after a mutation and
// triggers loads, tempo enrichment, events and persistence.
func (s *serviceImpl) syncLocked(prevLen, prevIndex int, queueChanged, autoplay bool) {
	lenChanged := s.queue.Len() != prevLen
	indexChanged := s.queue.CurrentIndex() != prevIndex

	if lenChanged || indexChanged {
		path, _ := s.queue.CurrentPath()
		if path != s.currentPath {
			s.loadLocked(path, autoplay)
		}
	}

	if lenChanged && s.opts.Tempo != nil {
		s.opts.Tempo.EnrichAll(s.ctx, s.queue.Tracks())
	}

	if queueChanged || indexChanged {
		tracks := s.queue.Tracks()
		index := s.queue.CurrentIndex()
		s.emitQueue(QueueChange{Tracks: tracks, Index: index})
		if s.opts.Persister != nil {
			s.opts.Persister.SaveQueue(state.QueueState{CurrentIndex: index, Tracks: tracks})
		}
	}
}

// loadLocked replaces the transport with one bound to path.
// An empty path tears down playback and returns to Idle.
func (s *serviceImpl) loadLocked(path string, autoplay bool) {
	s.teardownLocked()

	previous := s.currentPath
	s.currentPath = path
	s.metadata = nil
	s.generation++

	s.emitTrack(TrackChange{PreviousPath: previous, Path: path, Index: s.queue.CurrentIndex()})
	if s.opts.Persister != nil {
		if err := s.opts.Persister.SaveCurrentPath(path); err != nil {
			s.logger.Warn("save current path", "err", err)
		}
	}

	if path == "" {
		s.setStateLocked(StateIdle)
		return
	}

	t, err := s.opts.Opener(path)
	if err != nil {
		s.logger.Error("load track", "path", path, "err", err)
		s.emitError(ErrorEvent{Operation: "load", Path: path, Err: err})
		s.setStateLocked(StateIdle)
		return
	}
	s.transport = t
	t.SetVolume(s.volume)
	if autoplay {
		t.Play()
		s.setStateLocked(StatePlaying)
	} else {
		s.setStateLocked(StatePaused)
	}

	gen := s.generation
	ctx, cancel := context.WithCancel(s.ctx)
	s.stopTicker = cancel
	s.wg.Add(1)
	go s.watch(ctx, gen, t)

	if s.opts.ReadMetadata != nil {
		s.wg.Add(1)
		go s.fetchMetadata(gen, path)
	}

	if s.opts.Artwork != nil {
		s.opts.Artwork.Enrich(s.ctx, path)
	}
}

// teardownLocked stops the ticker and releases the transport.
func (s *serviceImpl) teardownLocked() {
	if s.stopTicker != nil {
		s.stopTicker()
		s.stopTicker = nil
	}
	if s.transport != nil {
		t := s.transport
		s.transport = nil
		if err := t.Close(); err != nil {
			s.logger.Debug("close transport", "err", err)
		}
	}
}

// watch drives the progress tick and natural end for one load.
func (s *serviceImpl) watch(ctx context.Context, gen uint64, t player.Transport) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	finished := t.Finished()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(gen)
		case <-finished:
			finished = nil
			s.handleFinished(gen)
		}
	}
}

func (s *serviceImpl) fetchMetadata(gen uint64, path string) {
	defer s.wg.Done()

	md, err := s.opts.ReadMetadata(path)
	if err != nil {
		s.logger.Debug("read metadata", "path", path, "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.metadata = md
	}
}

// tick reports progress to the presence collaborator.
func (s *serviceImpl) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.transport == nil || s.opts.Presence == nil {
		s.mu.Unlock()
		return
	}
	total := s.transport.Duration()
	if total <= 0 && s.metadata != nil {
		total = s.metadata.Duration
	}
	pos := s.transport.Position()
	u := presence.Update{
		Path:     s.currentPath,
		Title:    s.metadata.DisplayName(s.currentPath),
		Total:    DurationHuman(total),
		Elapsed:  DurationHuman(pos),
		Playing:  s.state == StatePlaying,
		Position: pos,
		Length:   total,
	}
	reporter := s.opts.Presence
	s.mu.Unlock()

	reporter.UpdatePresence(u)
}

// handleFinished advances after a natural end, or pauses when the
// currently playing path does not change.
func (s *serviceImpl) handleFinished(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return
	}

	prevLen, prevIndex := s.queue.Len(), s.queue.CurrentIndex()
	s.queue.Next(1)
	s.syncLocked(prevLen, prevIndex, false, true)

	if gen == s.generation {
		if s.transport != nil {
			s.transport.Pause()
		}
		s.setStateLocked(StatePaused)
	}
}

func (s *serviceImpl) setStateLocked(next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	s.emitState(StateChange{Previous: prev, Current: next})
}

// Play resumes the loaded track.
func (s *serviceImpl) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return
	}
	s.transport.Play()
	s.setStateLocked(StatePlaying)
}

// Pause pauses the loaded track.
func (s *serviceImpl) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return
	}
	s.transport.Pause()
	s.setStateLocked(StatePaused)
}

// Toggle switches between playing and paused.
func (s *serviceImpl) Toggle() {
	if s.State() == StatePlaying {
		s.Pause()
		return
	}
	s.Play()
}

func (s *serviceImpl) seek(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return
	}
	s.transport.Seek(delta)
	s.emitPosition(s.transport.Position())
}

// SeekForward moves the position forward by step.
func (s *serviceImpl) SeekForward(step time.Duration) {
	if step <= 0 {
		step = s.opts.SeekStep
	}
	s.seek(step)
}

// SeekBackward moves the position back by step.
func (s *serviceImpl) SeekBackward(step time.Duration) {
	if step <= 0 {
		step = s.opts.SeekStep
	}
	s.seek(-step)
}

// SetVolume applies level as given to the transport and the persisted setting.
func (s *serviceImpl) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setVolumeLocked(level)
}

func (s *serviceImpl) setVolumeLocked(level float64) {
	s.volume = level
	if s.transport != nil {
		s.transport.SetVolume(level)
	}
	if s.opts.Persister != nil {
		if err := s.opts.Persister.SaveVolume(level); err != nil {
			s.logger.Warn("save volume", "err", err)
		}
	}
	s.emitVolume(VolumeChange{Volume: level})
}

// VolumeUp raises the volume by amount, capped at 1.
func (s *serviceImpl) VolumeUp(amount float64) {
	if amount <= 0 {
		amount = s.opts.VolumeStep
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setVolumeLocked(min(1, s.volume+amount))
}

// VolumeDown lowers the volume by amount, floored at 0.
func (s *serviceImpl) VolumeDown(amount float64) {
	if amount <= 0 {
		amount = s.opts.VolumeStep
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setVolumeLocked(max(0, s.volume-amount))
}

// Next moves forward by skip tracks when the boundary guard allows it.
func (s *serviceImpl) Next(skip int) {
	s.mutate(true, func() bool {
		s.queue.Next(skip)
		return false
	})
}

// Previous moves back by skip tracks when the boundary guard allows it.
func (s *serviceImpl) Previous(skip int) {
	s.mutate(true, func() bool {
		s.queue.Previous(skip)
		return false
	})
}

// SetIndex selects index i without validation.
func (s *serviceImpl) SetIndex(i int) {
	s.mutate(true, func() bool {
		s.queue.SetIndex(i)
		return false
	})
}

// SetQueue replaces the queue with the flattened entries.
func (s *serviceImpl) SetQueue(entries ...playlist.Entry) {
	s.mutate(true, func() bool {
		s.queue.SetQueue(entries...)
		s.history.Push(s.queue.Tracks())
		return true
	})
}

// LoadFolder puts files in front of the existing queue.
func (s *serviceImpl) LoadFolder(files []string) {
	s.mutate(true, func() bool {
		s.queue.SetQueue(playlist.Batch(playlist.Paths(files...)...), playlist.Batch(playlist.Paths(s.queue.Tracks()...)...))
		s.history.Push(s.queue.Tracks())
		return true
	})
}

// PrependAndSelect inserts path at the front and selects it if its
// extension is allowed.
func (s *serviceImpl) PrependAndSelect(path string) bool {
	var ok bool
	s.mutate(true, func() bool {
		ok = s.queue.PrependAndSelect(path)
		if ok {
			s.history.Push(s.queue.Tracks())
		}
		return ok
	})
	return ok
}

// Clear empties the queue.
func (s *serviceImpl) Clear() {
	s.mutate(true, func() bool {
		if s.queue.IsEmpty() {
			return false
		}
		s.queue.Clear()
		s.history.Push(nil)
		return true
	})
}

// Shuffle permutes the queue. The index is kept, so the current path only
// reloads on a later length or index change.
func (s *serviceImpl) Shuffle() {
	s.mutate(true, func() bool {
		s.queue.Shuffle(s.opts.Rand)
		s.history.Push(s.queue.Tracks())
		return true
	})
}

// Restore replaces the queue and index and loads the current track paused.
func (s *serviceImpl) Restore(tracks []string, index int) {
	s.mutate(false, func() bool {
		s.queue.Restore(tracks, index)
		s.history.Push(s.queue.Tracks())
		return true
	})
}

// Undo restores the previous queue contents.
func (s *serviceImpl) Undo() bool {
	var ok bool
	s.mutate(true, func() bool {
		var tracks []string
		tracks, ok = s.history.Undo()
		if ok {
			s.queue.SetQueue(playlist.Paths(tracks...)...)
		}
		return ok
	})
	return ok
}

// Redo reapplies the queue contents undone last.
func (s *serviceImpl) Redo() bool {
	var ok bool
	s.mutate(true, func() bool {
		var tracks []string
		tracks, ok = s.history.Redo()
		if ok {
			s.queue.SetQueue(playlist.Paths(tracks...)...)
		}
		return ok
	})
	return ok
}

// State returns the current playback state.
func (s *serviceImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentPath returns the currently playing path, empty when none.
func (s *serviceImpl) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPath
}

// Metadata returns the loaded track's metadata, nil until it is read.
func (s *serviceImpl) Metadata() *tags.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// Snapshot returns a copy of the service state.
func (s *serviceImpl) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:    s.state,
		Path:     s.currentPath,
		Index:    s.queue.CurrentIndex(),
		Tracks:   s.queue.Tracks(),
		Volume:   s.volume,
		Metadata: s.metadata,
	}
	if s.transport != nil {
		snap.Position = s.transport.Position()
		snap.Duration = s.transport.Duration()
	}
	return snap
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close stops playback and shuts down the service.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.teardownLocked()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

func (s *serviceImpl) forEachSub(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

func (s *serviceImpl) emitState(e StateChange) {
	s.forEachSub(func(sub *Subscription) { sub.sendState(e) })
}

func (s *serviceImpl) emitTrack(e TrackChange) {
	s.forEachSub(func(sub *Subscription) { sub.sendTrack(e) })
}

func (s *serviceImpl) emitQueue(e QueueChange) {
	s.forEachSub(func(sub *Subscription) {
		sub.sendQueue(QueueChange{Tracks: slices.Clone(e.Tracks), Index: e.Index})
	})
}

func (s *serviceImpl) emitVolume(e VolumeChange) {
	s.forEachSub(func(sub *Subscription) { sub.sendVolume(e) })
}

func (s *serviceImpl) emitPosition(pos time.Duration) {
	s.forEachSub(func(sub *Subscription) { sub.sendPosition(pos) })
}

func (s *serviceImpl) emitError(e ErrorEvent) {
	s.forEachSub(func(sub *Subscription) { sub.sendError(e) })
}
