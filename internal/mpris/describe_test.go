package mpris

import (
	"strings"
	"testing"
	"time"

	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/amethyst/internal/playback"
	"github.com/llehouerou/amethyst/internal/tags"
)

func TestDescribe_WithMetadata(t *testing.T) {
	snap := playback.Snapshot{
		Path:     "/music/song.flac",
		Duration: 3 * time.Minute,
		Metadata: &tags.Metadata{Artist: "Artist", Title: "Song", Album: "Album"},
	}
	art := func(p string) (string, bool) { return "/cache/abc.png", p == "/music/song.flac" }

	info := describe(snap, art)

	if info.Title != "Song" {
		t.Errorf("Title = %q, want Song", info.Title)
	}
	if len(info.Artist) != 1 || info.Artist[0] != "Artist" {
		t.Errorf("Artist = %v, want [Artist]", info.Artist)
	}
	if info.Album != "Album" {
		t.Errorf("Album = %q, want Album", info.Album)
	}
	if info.Length != 3*time.Minute {
		t.Errorf("Length = %v, want 3m", info.Length)
	}
	if info.ArtURL != "file:///cache/abc.png" {
		t.Errorf("ArtURL = %q", info.ArtURL)
	}
	if !strings.HasPrefix(info.TrackID, "/org/mpris/MediaPlayer2/Track/") {
		t.Errorf("TrackID = %q", info.TrackID)
	}
}

func TestDescribe_FallsBackToFilename(t *testing.T) {
	info := describe(playback.Snapshot{Path: "/music/untagged.wav"}, nil)

	if info.Title != "untagged.wav" {
		t.Errorf("Title = %q, want untagged.wav", info.Title)
	}
	if info.Artist != nil || info.ArtURL != "" {
		t.Errorf("unexpected artist/art: %v %q", info.Artist, info.ArtURL)
	}
}

func TestDescribe_MetadataDuration(t *testing.T) {
	snap := playback.Snapshot{
		Path:     "/music/a.mp3",
		Metadata: &tags.Metadata{Duration: 90 * time.Second},
	}
	if got := describe(snap, nil).Length; got != 90*time.Second {
		t.Errorf("Length = %v, want 90s", got)
	}
}

func TestFormatTrackID_Stable(t *testing.T) {
	a := formatTrackID("/music/a.mp3")
	if a != formatTrackID("/music/a.mp3") {
		t.Error("track id should be stable")
	}
	if a == formatTrackID("/music/b.mp3") {
		t.Error("different paths should produce different ids")
	}
}

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		state playback.State
		want  types.PlaybackStatus
	}{
		{playback.StatePlaying, types.PlaybackStatusPlaying},
		{playback.StatePaused, types.PlaybackStatusPaused},
		{playback.StateIdle, types.PlaybackStatusStopped},
	}
	for _, tt := range tests {
		if got := playbackStatus(tt.state); got != tt.want {
			t.Errorf("playbackStatus(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestNavigationGuards(t *testing.T) {
	tests := []struct {
		index, length int
		next, prev    bool
	}{
		{-1, 0, false, false},
		{0, 3, true, false},
		{1, 3, false, false},
		{2, 5, true, true},
		{3, 5, false, true},
	}
	for _, tt := range tests {
		if got := canGoNext(tt.index, tt.length); got != tt.next {
			t.Errorf("canGoNext(%d, %d) = %v, want %v", tt.index, tt.length, got, tt.next)
		}
		if got := canGoPrevious(tt.index); got != tt.prev {
			t.Errorf("canGoPrevious(%d) = %v, want %v", tt.index, got, tt.prev)
		}
	}
}

func TestClampVolume(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.3: 0.3, 2: 1} {
		if got := clampVolume(in); got != want {
			t.Errorf("clampVolume(%v) = %v, want %v", in, got, want)
		}
	}
}
