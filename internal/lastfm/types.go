package lastfm

import "time"

// Play is one listen of a track as Last.fm sees it.
type Play struct {
	Artist    string
	Title     string
	Album     string
	Length    time.Duration
	StartedAt time.Time
}

// listen tracks what has been reported for the current path.
type listen struct {
	path      string
	play      *Play // nil when the track lacks artist or title tags
	announced bool
	scrobbled bool
}
