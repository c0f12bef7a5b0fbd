// Package presence fans periodic playback status out to external integrations.
package presence

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Update is one progress report, sent every tick while a track is loaded.
type Update struct {
	Path    string
	Title   string // display name
	Total   string // M:SS
	Elapsed string // M:SS
	Playing bool

	Position time.Duration
	Length   time.Duration
}

// Reporter receives updates. Implementations must not block.
type Reporter interface {
	UpdatePresence(u Update)
}

// Func adapts a function to Reporter.
type Func func(Update)

func (f Func) UpdatePresence(u Update) { f(u) }

// Multi forwards each update to every reporter in order.
type Multi []Reporter

func (m Multi) UpdatePresence(u Update) {
	for _, r := range m {
		if r != nil {
			r.UpdatePresence(u)
		}
	}
}

// Log reports updates at debug level, skipping repeats.
type Log struct {
	Logger *log.Logger

	mu   sync.Mutex
	last Update
}

func (l *Log) UpdatePresence(u Update) {
	l.mu.Lock()
	if u == l.last {
		l.mu.Unlock()
		return
	}
	l.last = u
	l.mu.Unlock()

	if l.Logger != nil {
		l.Logger.Debug("presence", "title", u.Title, "elapsed", u.Elapsed, "total", u.Total, "playing", u.Playing)
	}
}

// Recorder keeps every update it receives.
type Recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *Recorder) UpdatePresence(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

// Updates returns a copy of the received updates.
func (r *Recorder) Updates() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Update(nil), r.updates...)
}

// Last returns the most recent update.
func (r *Recorder) Last() (Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.updates) == 0 {
		return Update{}, false
	}
	return r.updates[len(r.updates)-1], true
}
