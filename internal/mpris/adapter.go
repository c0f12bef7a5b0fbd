package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/amethyst/internal/playback"
)

// rootAdapter answers org.mpris.MediaPlayer2. The host owns the process
// lifecycle and there is no window, so Quit and Raise do nothing.
type rootAdapter struct{}

func (rootAdapter) Raise() error                { return nil }
func (rootAdapter) Quit() error                 { return nil }
func (rootAdapter) CanQuit() (bool, error)      { return false, nil }
func (rootAdapter) CanRaise() (bool, error)     { return false, nil }
func (rootAdapter) HasTrackList() (bool, error) { return false, nil }
func (rootAdapter) Identity() (string, error)   { return identity, nil }
func (rootAdapter) SupportedMimeTypes() ([]string, error) {
	return supportedMimeTypes, nil
}

//nolint:revive // name fixed by the server interface
func (rootAdapter) SupportedUriSchemes() ([]string, error) { return []string{"file"}, nil }

// playerAdapter answers org.mpris.MediaPlayer2.Player by reading the
// service on every call.
type playerAdapter struct {
	service playback.Service
	art     ArtFunc
}

func newPlayerAdapter(service playback.Service, art ArtFunc) *playerAdapter {
	return &playerAdapter{service: service, art: art}
}

func (p *playerAdapter) Next() error      { p.service.Next(1); return nil }
func (p *playerAdapter) Previous() error  { p.service.Previous(1); return nil }
func (p *playerAdapter) Play() error      { p.service.Play(); return nil }
func (p *playerAdapter) Pause() error     { p.service.Pause(); return nil }
func (p *playerAdapter) PlayPause() error { p.service.Toggle(); return nil }

// Stop keeps the track loaded; the service has no stopped state.
func (p *playerAdapter) Stop() error { p.service.Pause(); return nil }

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	d := time.Duration(offset) * time.Microsecond
	switch {
	case d > 0:
		p.service.SeekForward(d)
	case d < 0:
		p.service.SeekBackward(-d)
	}
	return nil
}

// SetPosition seeks to an absolute position. Requests for a track other
// than the current one are ignored.
func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	snap := p.service.Snapshot()
	if snap.Path == "" || trackID != formatTrackID(snap.Path) {
		return nil
	}
	target := time.Duration(position) * time.Microsecond
	if target < 0 || (snap.Duration > 0 && target > snap.Duration) {
		return nil
	}
	return p.Seek(types.Microseconds((target - snap.Position).Microseconds()))
}

//nolint:revive // name fixed by the server interface
func (p *playerAdapter) OpenUri(string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.service.State()), nil
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.service.Snapshot()
	if snap.Path == "" {
		return types.Metadata{}, nil
	}
	info := describe(snap, p.art)
	return types.Metadata{
		TrackId: dbus.ObjectPath(info.TrackID),
		Length:  types.Microseconds(info.Length.Microseconds()),
		Title:   info.Title,
		Artist:  info.Artist,
		Album:   info.Album,
		ArtUrl:  info.ArtURL,
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) { return p.service.Snapshot().Volume, nil }

func (p *playerAdapter) SetVolume(v float64) error {
	p.service.SetVolume(clampVolume(v))
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Snapshot().Position.Microseconds(), nil
}

// Playback rate is fixed at 1.
func (p *playerAdapter) Rate() (float64, error)        { return 1, nil }
func (p *playerAdapter) SetRate(float64) error         { return nil }
func (p *playerAdapter) MinimumRate() (float64, error) { return 1, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	snap := p.service.Snapshot()
	return canGoNext(snap.Index, len(snap.Tracks)), nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return canGoPrevious(p.service.Snapshot().Index), nil
}

func (p *playerAdapter) CanPlay() (bool, error)    { return p.loaded(), nil }
func (p *playerAdapter) CanPause() (bool, error)   { return p.loaded(), nil }
func (p *playerAdapter) CanSeek() (bool, error)    { return p.loaded(), nil }
func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

func (p *playerAdapter) loaded() bool { return p.service.State().IsLoaded() }
