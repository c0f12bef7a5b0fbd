package mpris

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/amethyst/internal/playback"
	"github.com/llehouerou/amethyst/internal/player"
	"github.com/llehouerou/amethyst/internal/tags"
)

func newTestAdapter(t *testing.T) (*playerAdapter, playback.Service, *player.MockOpener) {
	t.Helper()
	opener := player.NewMockOpener(3 * time.Minute)
	svc := playback.New(playback.Options{
		Opener: opener.Open,
		ReadMetadata: func(path string) (*tags.Metadata, error) {
			return &tags.Metadata{Path: path, Artist: "Band", Title: "Song", Album: "LP"}, nil
		},
		Volume: 0.5,
	})
	art := func(string) (string, bool) { return "/cache/song.png", true }
	return newPlayerAdapter(svc, art), svc, opener
}

func TestPlayerAdapter_Idle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, _ := newTestAdapter(t)
		defer svc.Close()

		status, _ := p.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusStopped, status)
		md, _ := p.Metadata()
		assert.Equal(t, types.Metadata{}, md)
		canPlay, _ := p.CanPlay()
		assert.False(t, canPlay)
		canControl, _ := p.CanControl()
		assert.True(t, canControl)
	})
}

func TestPlayerAdapter_TransportControls(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, _ := newTestAdapter(t)
		defer svc.Close()
		svc.Restore([]string{"/m/a.mp3", "/m/b.mp3"}, 0)

		status, _ := p.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPaused, status)

		require.NoError(t, p.PlayPause())
		assert.Equal(t, playback.StatePlaying, svc.State())

		require.NoError(t, p.Stop())
		assert.Equal(t, playback.StatePaused, svc.State())
		assert.Equal(t, "/m/a.mp3", svc.CurrentPath())

		require.NoError(t, p.Play())
		status, _ = p.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPlaying, status)
	})
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, _ := newTestAdapter(t)
		defer svc.Close()
		svc.Restore([]string{"/m/a.mp3"}, 0)
		synctest.Wait()

		md, err := p.Metadata()
		require.NoError(t, err)
		assert.Equal(t, dbus.ObjectPath(formatTrackID("/m/a.mp3")), md.TrackId)
		assert.Equal(t, "Song", md.Title)
		assert.Equal(t, []string{"Band"}, md.Artist)
		assert.Equal(t, "LP", md.Album)
		assert.Equal(t, types.Microseconds((3 * time.Minute).Microseconds()), md.Length)
		assert.Equal(t, "file:///cache/song.png", md.ArtUrl)
	})
}

func TestPlayerAdapter_Seek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, opener := newTestAdapter(t)
		defer svc.Close()
		svc.Restore([]string{"/m/a.mp3"}, 0)

		require.NoError(t, p.Seek(types.Microseconds((10 * time.Second).Microseconds())))
		require.NoError(t, p.Seek(types.Microseconds((-4 * time.Second).Microseconds())))
		require.NoError(t, p.Seek(0))
		assert.Equal(t, []time.Duration{10 * time.Second, -4 * time.Second}, opener.Last().SeekCalls())

		pos, _ := p.Position()
		assert.Equal(t, (6 * time.Second).Microseconds(), pos)
	})
}

func TestPlayerAdapter_SetPosition(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, opener := newTestAdapter(t)
		defer svc.Close()
		svc.Restore([]string{"/m/a.mp3"}, 0)
		id := formatTrackID("/m/a.mp3")

		require.NoError(t, p.SetPosition(id, types.Microseconds((90*time.Second).Microseconds())))
		assert.Equal(t, 90*time.Second, svc.Snapshot().Position)

		require.NoError(t, p.SetPosition(id, types.Microseconds((30*time.Second).Microseconds())))
		assert.Equal(t, 30*time.Second, svc.Snapshot().Position)

		// stale track id and out-of-range targets are ignored
		require.NoError(t, p.SetPosition(formatTrackID("/m/other.mp3"), 0))
		require.NoError(t, p.SetPosition(id, types.Microseconds((time.Hour).Microseconds())))
		assert.Len(t, opener.Last().SeekCalls(), 2)
	})
}

func TestPlayerAdapter_Navigation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, _ := newTestAdapter(t)
		defer svc.Close()
		svc.Restore([]string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3", "/m/d.mp3"}, 0)

		canNext, _ := p.CanGoNext()
		canPrev, _ := p.CanGoPrevious()
		assert.True(t, canNext)
		assert.False(t, canPrev)

		require.NoError(t, p.Next())
		require.NoError(t, p.Next())
		assert.Equal(t, 2, svc.Snapshot().Index)

		canNext, _ = p.CanGoNext()
		canPrev, _ = p.CanGoPrevious()
		assert.False(t, canNext)
		assert.True(t, canPrev)

		require.NoError(t, p.Previous())
		assert.Equal(t, 1, svc.Snapshot().Index)
	})
}

func TestPlayerAdapter_Volume(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p, svc, _ := newTestAdapter(t)
		defer svc.Close()

		v, _ := p.Volume()
		assert.InDelta(t, 0.5, v, 1e-9)

		require.NoError(t, p.SetVolume(1.7))
		v, _ = p.Volume()
		assert.InDelta(t, 1.0, v, 1e-9)

		require.NoError(t, p.SetVolume(-1))
		v, _ = p.Volume()
		assert.Zero(t, v)
	})
}

func TestRootAdapter(t *testing.T) {
	var r rootAdapter
	name, _ := r.Identity()
	assert.Equal(t, identity, name)
	schemes, _ := r.SupportedUriSchemes()
	assert.Equal(t, []string{"file"}, schemes)
	canQuit, _ := r.CanQuit()
	assert.False(t, canQuit)
}
