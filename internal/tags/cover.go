package tags

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// CoverSource says where a cover image was found.
type CoverSource int

const (
	CoverNone CoverSource = iota
	CoverEmbedded
	CoverFolder
)

// Cover is raw cover image data with its MIME type.
type Cover struct {
	Data   []byte
	MIME   string
	Source CoverSource
}

// Folder image names in preference order, matched case-insensitively.
var (
	coverStems = []string{"cover", "folder", "front", "album", "artwork"}
	coverExts  = []string{".jpg", ".jpeg", ".png"}
)

// FindCover returns the picture embedded in path, or failing that the
// best-named image in its folder. A track with neither yields a zero
// Cover and no error.
func FindCover(path string) (Cover, error) {
	c, err := embeddedCover(path)
	if err != nil || c.Source != CoverNone {
		return c, err
	}
	return folderCover(filepath.Dir(path))
}

func embeddedCover(path string) (Cover, error) {
	f, err := os.Open(path)
	if err != nil {
		return Cover{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
		return Cover{}, nil
	case err != nil:
		return Cover{}, err
	}
	pic := m.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return Cover{}, nil
	}
	return Cover{Data: pic.Data, MIME: pic.MIMEType, Source: CoverEmbedded}, nil
}

func folderCover(dir string) (Cover, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Cover{}, nil //nolint:nilerr // unreadable folder means no folder art
	}

	best, bestRank := "", -1
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		rank := coverRank(e.Name())
		if rank >= 0 && (bestRank < 0 || rank < bestRank) {
			best, bestRank = e.Name(), rank
		}
	}
	if bestRank < 0 {
		return Cover{}, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, best))
	if err != nil {
		return Cover{}, err
	}
	return Cover{Data: data, MIME: imageMIME(best), Source: CoverFolder}, nil
}

// coverRank orders candidate names by stem then extension; -1 rejects.
func coverRank(name string) int {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	e := slices.Index(coverExts, ext)
	s := slices.Index(coverStems, strings.TrimSuffix(lower, ext))
	if e < 0 || s < 0 {
		return -1
	}
	return s*len(coverExts) + e
}

func imageMIME(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".png") {
		return mimePNG
	}
	return mimeJPEG
}
