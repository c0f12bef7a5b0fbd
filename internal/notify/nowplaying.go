package notify

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/presence"
	"github.com/llehouerou/amethyst/internal/tags"
)

const fallbackIcon = "audio-x-generic"

// NowPlaying shows a desktop notification when a new track starts playing.
// Each notification replaces the previous one.
type NowPlaying struct {
	notifier Notifier
	lookup   func(path string) (*tags.Metadata, error)
	art      func(path string) (string, bool)
	timeout  int32
	logger   *log.Logger

	mu       sync.Mutex
	lastPath string
	lastID   uint32
}

// NewNowPlaying creates the reporter. art may be nil to always use the
// generic icon.
func NewNowPlaying(n Notifier, lookup func(string) (*tags.Metadata, error), art func(string) (string, bool), timeout int32, l *log.Logger) *NowPlaying {
	return &NowPlaying{
		notifier: n,
		lookup:   lookup,
		art:      art,
		timeout:  timeout,
		logger:   logger.Component(l, "notify"),
	}
}

var _ presence.Reporter = (*NowPlaying)(nil)

// UpdatePresence implements presence.Reporter.
func (p *NowPlaying) UpdatePresence(u presence.Update) {
	if p.notifier == nil || !u.Playing || u.Path == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if u.Path == p.lastPath {
		return
	}
	p.lastPath = u.Path

	n := p.build(u)
	n.Replaces = p.lastID
	id, err := p.notifier.Notify(n)
	if err != nil {
		p.logger.Debug("notify", "err", err)
		return
	}
	p.lastID = id
}

func (p *NowPlaying) build(u presence.Update) Notification {
	n := Notification{
		Title:     u.Title,
		Icon:      fallbackIcon,
		Timeout:   p.timeout,
		Transient: true,
	}
	if p.lookup != nil {
		if md, err := p.lookup(u.Path); err == nil && md != nil {
			if md.Title != "" {
				n.Title = md.Title
			}
			n.Body = joinNonEmpty(" · ", md.Artist, md.Album)
		}
	}
	if p.art != nil {
		if icon, ok := p.art(u.Path); ok {
			n.Icon = icon
		}
	}
	return n
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}
