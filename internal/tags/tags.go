// Package tags reads track metadata and cover art from music files.
package tags

import (
	"path/filepath"
	"time"
)

// File extensions with dedicated handling.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
)

// Metadata is the subset of tag data the player displays.
// Any field may be empty; files without tags are normal.
type Metadata struct {
	Path     string
	Artist   string
	Title    string
	Album    string
	Duration time.Duration
}

// DisplayName returns "Artist - Title" when both are known,
// else the title, else the file name of path.
func (m *Metadata) DisplayName(path string) string {
	if m != nil {
		switch {
		case m.Artist != "" && m.Title != "":
			return m.Artist + " - " + m.Title
		case m.Title != "":
			return m.Title
		}
	}
	return filepath.Base(path)
}
