package playlist

import "math/rand/v2"

// Queue is the ordered playback queue with the current position.
// Duplicates are allowed; order is significant.
type Queue struct {
	tracks       []string
	currentIndex int // -1 if nothing selected
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{
		tracks:       make([]string, 0),
		currentIndex: -1,
	}
}

// SetQueue replaces the queue with the flattened entries.
// The current index is left untouched.
func (q *Queue) SetQueue(entries ...Entry) {
	q.tracks = Flatten(entries)
}

// Restore replaces the queue and the current index in one step.
func (q *Queue) Restore(paths []string, index int) {
	q.tracks = append(make([]string, 0, len(paths)), paths...)
	q.currentIndex = index
}

// PrependAndSelect inserts path at the front and selects it.
// Paths with a disallowed extension are ignored and false is returned.
func (q *Queue) PrependAndSelect(path string) bool {
	if !IsAllowed(path) {
		return false
	}
	q.tracks = append([]string{path}, q.tracks...)
	q.currentIndex = 0
	return true
}

// Clear empties the queue. The index is left to the caller.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}

// Shuffle permutes the queue in place with a Fisher-Yates shuffle.
// A nil rng uses the global source.
func (q *Queue) Shuffle(rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(q.tracks) - 1; i > 0; i-- {
		j := intN(i + 1)
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	}
}

// Next moves forward by skip while index+skip stays below len-skip.
// Returns false when the guard blocks the move.
func (q *Queue) Next(skip int) bool {
	if !q.HasNext(skip) {
		return false
	}
	q.currentIndex += normalizeSkip(skip)
	return true
}

// HasNext reports whether Next(skip) would move.
func (q *Queue) HasNext(skip int) bool {
	skip = normalizeSkip(skip)
	return q.currentIndex+skip < len(q.tracks)-skip
}

// Previous moves backward by skip while the result stays above zero.
// Returns false when the guard blocks the move.
func (q *Queue) Previous(skip int) bool {
	if !q.HasPrevious(skip) {
		return false
	}
	q.currentIndex -= normalizeSkip(skip)
	return true
}

// HasPrevious reports whether Previous(skip) would move.
func (q *Queue) HasPrevious(skip int) bool {
	return q.currentIndex-normalizeSkip(skip) > 0
}

// SetIndex assigns the current index without bounds validation.
func (q *Queue) SetIndex(i int) {
	q.currentIndex = i
}

// CurrentIndex returns the current index (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// CurrentPath returns the track at the current index.
// Returns false when the index is out of range.
func (q *Queue) CurrentPath() (string, bool) {
	if q.currentIndex < 0 || q.currentIndex >= len(q.tracks) {
		return "", false
	}
	return q.tracks[q.currentIndex], true
}

// Tracks returns a copy of all tracks.
func (q *Queue) Tracks() []string {
	result := make([]string, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

func normalizeSkip(skip int) int {
	if skip < 1 {
		return 1
	}
	return skip
}
