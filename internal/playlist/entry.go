package playlist

// Entry is either a single track path or a nested batch of entries.
// Hosts hand over folders as batches that may themselves contain batches.
type Entry struct {
	path    string
	batch   []Entry
	isBatch bool
}

// Path creates a leaf entry for a single track.
func Path(p string) Entry {
	return Entry{path: p}
}

// Batch groups entries, possibly nested, into one entry.
func Batch(entries ...Entry) Entry {
	return Entry{batch: entries, isBatch: true}
}

// Paths wraps each path in a leaf entry.
func Paths(paths ...string) []Entry {
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		entries[i] = Path(p)
	}
	return entries
}

// IsBatch reports whether the entry holds nested entries.
func (e Entry) IsBatch() bool {
	return e.isBatch
}

// Flatten expands nested batches depth-first, preserving relative order.
func Flatten(entries []Entry) []string {
	result := make([]string, 0, len(entries))
	return appendFlat(result, entries)
}

func appendFlat(dst []string, entries []Entry) []string {
	for _, e := range entries {
		if e.isBatch {
			dst = appendFlat(dst, e.batch)
			continue
		}
		dst = append(dst, e.path)
	}
	return dst
}
