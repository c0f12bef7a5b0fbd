package lastfm

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/errmsg"
	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/presence"
	"github.com/llehouerou/amethyst/internal/tags"
)

const (
	minScrobbleLength = 30 * time.Second
	maxScrobbleWait   = 4 * time.Minute
)

// API is the subset of Client used by Scrobbler.
type API interface {
	UpdateNowPlaying(p Play) error
	Scrobble(p Play) error
}

// Scrobbler turns presence updates into now-playing notifications and
// scrobbles. Network calls run in the background so updates never block.
type Scrobbler struct {
	api    API
	lookup func(path string) (*tags.Metadata, error)
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	current *listen
	wg      sync.WaitGroup
}

// NewScrobbler creates a scrobbler reading track tags with lookup.
func NewScrobbler(api API, lookup func(string) (*tags.Metadata, error), l *log.Logger) *Scrobbler {
	return &Scrobbler{
		api:    api,
		lookup: lookup,
		logger: logger.Component(l, "lastfm"),
		now:    time.Now,
	}
}

var _ presence.Reporter = (*Scrobbler)(nil)

// UpdatePresence implements presence.Reporter.
func (s *Scrobbler) UpdatePresence(u presence.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.path != u.Path {
		s.current = &listen{path: u.Path, play: s.buildPlay(u)}
	}
	cur := s.current
	if cur.play == nil || !u.Playing {
		return
	}

	if !cur.announced {
		cur.announced = true
		p := *cur.play
		s.send(errmsg.OpLastfmNowPlaying, func() error { return s.api.UpdateNowPlaying(p) })
	}

	if !cur.scrobbled && shouldScrobble(u.Position, cur.play.Length) {
		cur.scrobbled = true
		p := *cur.play
		s.send(errmsg.OpLastfmScrobble, func() error { return s.api.Scrobble(p) })
	}
}

// Wait blocks until in-flight requests complete.
func (s *Scrobbler) Wait() {
	s.wg.Wait()
}

func (s *Scrobbler) send(op errmsg.Op, fn func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(); err != nil {
			s.logger.Warn(errmsg.Format(op, err))
		}
	}()
}

// buildPlay returns nil for tracks without artist and title tags.
func (s *Scrobbler) buildPlay(u presence.Update) *Play {
	md, err := s.lookup(u.Path)
	if err != nil {
		s.logger.Debug("read tags", "path", u.Path, "err", err)
		return nil
	}
	if md.Artist == "" || md.Title == "" {
		return nil
	}
	length := u.Length
	if length <= 0 {
		length = md.Duration
	}
	return &Play{
		Artist:    md.Artist,
		Title:     md.Title,
		Album:     md.Album,
		Length:    length,
		StartedAt: s.now(),
	}
}

// shouldScrobble applies the Last.fm rule: the track is at least 30s long
// and has played for half its length or 4 minutes, whichever comes first.
func shouldScrobble(position, length time.Duration) bool {
	if length < minScrobbleLength {
		return false
	}
	return position >= min(length/2, maxScrobbleWait)
}
