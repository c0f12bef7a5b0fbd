// Package artwork turns embedded or folder cover art into cached PNG thumbnails.
package artwork

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder for cover art
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nfnt/resize"

	"github.com/llehouerou/amethyst/internal/tags"
)

const (
	cacheMaxAge   = 30 * 24 * time.Hour // 30 days
	pruneInterval = 24 * time.Hour
)

// ErrNoArtwork is returned when a track has neither embedded nor folder art.
var ErrNoArtwork = errors.New("no artwork")

// ExtractFunc returns raw cover image data for a track, or nil data if none.
type ExtractFunc func(path string) (data []byte, mimeType string, err error)

// Fetcher resolves a track to the path of a square-bounded PNG thumbnail,
// caching thumbnails on disk keyed by track path and size.
type Fetcher struct {
	dir     string
	size    int
	extract ExtractFunc

	mu         sync.Mutex
	lastPruned time.Time
}

// New creates a Fetcher storing thumbnails of at most size pixels under dir.
func New(dir string, size int) (*Fetcher, error) {
	if dir == "" {
		return nil, errors.New("artwork: empty cache dir")
	}
	if size < 1 {
		size = 300
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Fetcher{dir: dir, size: size, extract: coverData}, nil
}

func coverData(path string) ([]byte, string, error) {
	c, err := tags.FindCover(path)
	return c.Data, c.MIME, err
}

// WithExtractor replaces the cover art source.
func (f *Fetcher) WithExtractor(fn ExtractFunc) *Fetcher {
	f.extract = fn
	return f
}

// Dir returns the cache directory.
func (f *Fetcher) Dir() string {
	return f.dir
}

func cacheKey(trackPath string, size int) string {
	hash := sha256.Sum256(fmt.Appendf(nil, "%s:%d", trackPath, size))
	return hex.EncodeToString(hash[:])
}

// Fetch returns the thumbnail path for trackPath, rendering it on a cache miss.
func (f *Fetcher) Fetch(ctx context.Context, trackPath string) (string, error) {
	out := filepath.Join(f.dir, cacheKey(trackPath, f.size)+".png")

	if _, err := os.Stat(out); err == nil {
		// Touch the file to update mtime (keeps frequently used entries fresh)
		now := time.Now()
		_ = os.Chtimes(out, now, now) //nolint:errcheck // best-effort
		return out, nil
	}

	data, _, err := f.extract(trackPath)
	if err != nil {
		return "", fmt.Errorf("extract cover art: %w", err)
	}
	if data == nil {
		return "", ErrNoArtwork
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode cover art: %w", err)
	}

	size := uint(f.size) //nolint:gosec // size validated in New
	thumb := resize.Thumbnail(size, size, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	// Write to a temp file and rename so readers never see partial images
	tmp, err := os.CreateTemp(f.dir, "thumb-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return out, nil
}

// Prune removes thumbnails not used for 30 days.
// Calls within a day of the previous prune do nothing.
func (f *Fetcher) Prune() int {
	f.mu.Lock()
	if !f.lastPruned.IsZero() && time.Since(f.lastPruned) < pruneInterval {
		f.mu.Unlock()
		return 0
	}
	f.lastPruned = time.Now()
	f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-cacheMaxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(f.dir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed
}
