package tags

import (
	"errors"
	"os"
	"time"

	"github.com/dhowden/tag"

	"github.com/llehouerou/amethyst/internal/player"
)

// Read returns the metadata of a music file.
// Untagged files yield empty text fields; the duration comes from the
// audio stream and is zero when the format cannot be decoded.
func Read(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	md := &Metadata{Path: path}

	m, err := tag.ReadFrom(f)
	switch {
	case err == nil:
		md.Artist = m.Artist()
		if md.Artist == "" {
			md.Artist = m.AlbumArtist()
		}
		md.Title = m.Title()
		md.Album = m.Album()
	case errors.Is(err, tag.ErrNoTagsFound):
	default:
		return nil, err
	}

	md.Duration = readDuration(path)
	return md, nil
}

// readDuration decodes the stream header to compute the track length.
func readDuration(path string) (d time.Duration) {
	if !player.CanDecode(path) {
		return 0
	}
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	streamer, format, err := player.Decode(path, f)
	if err != nil {
		return 0
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len())
}
