package mpris

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/amethyst/internal/playback"
)

const (
	busName  = "amethyst"
	identity = "Amethyst"
)

var supportedMimeTypes = []string{
	"audio/mpeg", "audio/flac", "audio/x-wav", "audio/ogg",
}

// ArtFunc returns the cached thumbnail path for a track, if any.
type ArtFunc func(trackPath string) (string, bool)

// trackInfo is the bus-independent view of the current track.
type trackInfo struct {
	TrackID string
	Title   string
	Artist  []string
	Album   string
	Length  time.Duration
	ArtURL  string
}

func describe(snap playback.Snapshot, art ArtFunc) trackInfo {
	info := trackInfo{
		TrackID: formatTrackID(snap.Path),
		Title:   snap.Metadata.DisplayName(snap.Path),
		Length:  snap.Duration,
	}
	if md := snap.Metadata; md != nil {
		if md.Title != "" {
			info.Title = md.Title
		}
		if md.Artist != "" {
			info.Artist = []string{md.Artist}
		}
		info.Album = md.Album
		if info.Length <= 0 {
			info.Length = md.Duration
		}
	}
	if art != nil {
		if p, ok := art(snap.Path); ok {
			info.ArtURL = "file://" + filepath.ToSlash(p)
		}
	}
	return info
}

// playbackStatus maps the service state to an MPRIS status.
func playbackStatus(s playback.State) types.PlaybackStatus {
	switch s {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying
	case playback.StatePaused:
		return types.PlaybackStatusPaused
	case playback.StateIdle:
		return types.PlaybackStatusStopped
	}
	return types.PlaybackStatusStopped
}

// canGoNext mirrors the queue's forward guard.
func canGoNext(index, length int) bool {
	return index+1 < length-1
}

// canGoPrevious mirrors the queue's backward guard.
func canGoPrevious(index int) bool {
	return index-1 > 0
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
