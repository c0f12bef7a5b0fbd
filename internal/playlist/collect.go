package playlist

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// AllowedExtensions gates single-file enqueue (matched case-insensitively).
var AllowedExtensions = []string{"ogg", "flac", "wav", "opus", "aac", "aiff", "mp3", "m4a"}

// IsAllowed reports whether the substring after the final dot is an allowed extension.
func IsAllowed(path string) bool {
	dot := strings.LastIndex(path, ".")
	ext := strings.ToLower(path[dot+1:])
	return slices.Contains(AllowedExtensions, ext)
}

// CollectFolder recursively collects all allowed files under dir, sorted by path.
func CollectFolder(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip unreadable entries, keep walking
			return nil //nolint:nilerr // intentionally skipping errors
		}
		if d.IsDir() || !IsAllowed(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)
	return paths, nil
}

// Expand turns a list of files and folders into entries, one batch per folder.
// Unreadable folders become empty batches.
func Expand(paths []string) []Entry {
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			entries = append(entries, Path(p))
			continue
		}
		files, _ := CollectFolder(p)
		entries = append(entries, Batch(Paths(files...)...))
	}
	return entries
}
