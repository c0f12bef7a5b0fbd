// internal/playlist/queue_test.go
//
//nolint:goconst // test file with repeated string literals
package playlist

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func newFilledQueue(paths ...string) *Queue {
	q := NewQueue()
	q.SetQueue(Paths(paths...)...)
	return q
}

func TestNewQueue(t *testing.T) {
	q := NewQueue()

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != -1 {
		t.Errorf("CurrentIndex() = %d, want -1", q.CurrentIndex())
	}
	if _, ok := q.CurrentPath(); ok {
		t.Error("CurrentPath() should be empty for empty queue")
	}
}

func TestQueue_SetQueue_Flattens(t *testing.T) {
	q := NewQueue()

	q.SetQueue(
		Path("/a.mp3"),
		Batch(Path("/b.mp3"), Batch(Path("/c.mp3"), Path("/d.mp3"))),
		Path("/e.mp3"),
	)

	want := []string{"/a.mp3", "/b.mp3", "/c.mp3", "/d.mp3", "/e.mp3"}
	if got := q.Tracks(); !slices.Equal(got, want) {
		t.Errorf("Tracks() = %v, want %v", got, want)
	}
}

func TestQueue_SetQueue_KeepsIndex(t *testing.T) {
	q := newFilledQueue("/a.mp3", "/b.mp3")
	q.SetIndex(1)

	q.SetQueue(Path("/c.mp3"))

	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	if _, ok := q.CurrentPath(); ok {
		t.Error("CurrentPath() should be empty when index is past the end")
	}
}

func TestQueue_SetQueue_Empty(t *testing.T) {
	q := newFilledQueue("/a.mp3")

	q.SetQueue()

	if !q.IsEmpty() {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueue_PrependAndSelect(t *testing.T) {
	q := newFilledQueue("/a.mp3", "/b.mp3")
	q.SetIndex(1)

	ok := q.PrependAndSelect("/new.FLAC")

	if !ok {
		t.Fatal("PrependAndSelect returned false for an allowed extension")
	}
	want := []string{"/new.FLAC", "/a.mp3", "/b.mp3"}
	if got := q.Tracks(); !slices.Equal(got, want) {
		t.Errorf("Tracks() = %v, want %v", got, want)
	}
	if q.CurrentIndex() != 0 {
		t.Errorf("CurrentIndex() = %d, want 0", q.CurrentIndex())
	}
}

func TestQueue_PrependAndSelect_RejectsExtension(t *testing.T) {
	q := newFilledQueue("a.mp3", "b.txt", "c.flac")
	q.SetIndex(2)

	ok := q.PrependAndSelect("b.txt")

	if ok {
		t.Error("PrependAndSelect accepted a .txt file")
	}
	want := []string{"a.mp3", "b.txt", "c.flac"}
	if got := q.Tracks(); !slices.Equal(got, want) {
		t.Errorf("Tracks() = %v, want %v (unchanged)", got, want)
	}
	if q.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2 (unchanged)", q.CurrentIndex())
	}
}

func TestQueue_Clear_LeavesIndex(t *testing.T) {
	q := newFilledQueue("/a.mp3", "/b.mp3")
	q.SetIndex(1)

	q.Clear()

	if !q.IsEmpty() {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
	if q.CurrentIndex() != 1 {
		t.Errorf("CurrentIndex() = %d, want 1", q.CurrentIndex())
	}
	if _, ok := q.CurrentPath(); ok {
		t.Error("CurrentPath() should be empty after Clear")
	}
}

func TestQueue_Next(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		index     int
		skip      int
		wantMoved bool
		wantIndex int
	}{
		{"from start", 5, 0, 1, true, 1},
		{"middle", 5, 2, 1, true, 3},
		{"guard blocks before last", 5, 3, 1, false, 3},
		{"length 3 index 2", 3, 2, 1, false, 2},
		{"length 3 index 1 guarded", 3, 1, 1, false, 1},
		{"skip two", 10, 2, 2, true, 4},
		{"skip two guarded", 10, 6, 2, false, 6},
		{"empty queue", 0, -1, 1, false, -1},
		{"zero skip defaults to one", 5, 0, 0, true, 1},
		{"unselected queue", 5, -1, 1, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			paths := make([]string, tt.length)
			for i := range paths {
				paths[i] = "/track.mp3"
			}
			q.Restore(paths, tt.index)

			moved := q.Next(tt.skip)

			if moved != tt.wantMoved {
				t.Errorf("Next(%d) = %v, want %v", tt.skip, moved, tt.wantMoved)
			}
			if q.CurrentIndex() != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantIndex)
			}
		})
	}
}

func TestQueue_Previous(t *testing.T) {
	tests := []struct {
		name      string
		index     int
		skip      int
		wantMoved bool
		wantIndex int
	}{
		{"from middle", 3, 1, true, 2},
		{"from two", 2, 1, true, 1},
		{"guard blocks reaching zero", 1, 1, false, 1},
		{"at zero", 0, 1, false, 0},
		{"skip two", 4, 2, true, 2},
		{"skip two guarded", 2, 2, false, 2},
		{"unselected", -1, 1, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			q.Restore([]string{"/0.mp3", "/1.mp3", "/2.mp3", "/3.mp3", "/4.mp3"}, tt.index)

			moved := q.Previous(tt.skip)

			if moved != tt.wantMoved {
				t.Errorf("Previous(%d) = %v, want %v", tt.skip, moved, tt.wantMoved)
			}
			if q.CurrentIndex() != tt.wantIndex {
				t.Errorf("CurrentIndex() = %d, want %d", q.CurrentIndex(), tt.wantIndex)
			}
		})
	}
}

func TestQueue_NavigationStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		length := rng.IntN(8)
		q := NewQueue()
		q.Restore(make([]string, length), rng.IntN(length+1)-1)

		for range 20 {
			before := q.CurrentIndex()
			skip := rng.IntN(3) + 1
			if rng.IntN(2) == 0 {
				q.Next(skip)
			} else {
				q.Previous(skip)
			}
			after := q.CurrentIndex()
			if after != before && (after < 0 || after >= length) {
				t.Fatalf("index moved out of bounds: %d -> %d (len %d)", before, after, length)
			}
		}
	}
}

func TestQueue_SetIndex_NoValidation(t *testing.T) {
	q := newFilledQueue("/a.mp3")

	q.SetIndex(7)

	if q.CurrentIndex() != 7 {
		t.Errorf("CurrentIndex() = %d, want 7", q.CurrentIndex())
	}
	if _, ok := q.CurrentPath(); ok {
		t.Error("CurrentPath() should be empty for out-of-range index")
	}
}

func TestQueue_CurrentPath(t *testing.T) {
	q := newFilledQueue("/a.mp3", "/b.mp3")
	q.SetIndex(1)

	path, ok := q.CurrentPath()

	if !ok || path != "/b.mp3" {
		t.Errorf("CurrentPath() = %q, %v, want /b.mp3, true", path, ok)
	}
}

func TestQueue_Tracks_ReturnsCopy(t *testing.T) {
	q := newFilledQueue("/a.mp3")

	tracks := q.Tracks()
	tracks[0] = "/modified.mp3"

	if got := q.Tracks()[0]; got != "/a.mp3" {
		t.Errorf("Tracks()[0] = %q, want /a.mp3", got)
	}
}

func TestQueue_Shuffle_IsPermutation(t *testing.T) {
	paths := []string{"/a.mp3", "/b.mp3", "/b.mp3", "/c.mp3", "/d.mp3", "/e.mp3"}
	q := newFilledQueue(paths...)

	q.Shuffle(rand.New(rand.NewPCG(42, 7)))

	got := q.Tracks()
	slices.Sort(got)
	want := slices.Clone(paths)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("shuffled multiset = %v, want %v", got, want)
	}
}

func TestQueue_Shuffle_KeepsIndex(t *testing.T) {
	q := newFilledQueue("/a.mp3", "/b.mp3", "/c.mp3")
	q.SetIndex(2)

	q.Shuffle(nil)

	if q.CurrentIndex() != 2 {
		t.Errorf("CurrentIndex() = %d, want 2", q.CurrentIndex())
	}
}

func TestQueue_Shuffle_Uniform(t *testing.T) {
	const (
		n      = 4
		trials = 48000
	)
	rng := rand.New(rand.NewPCG(3, 9))
	paths := []string{"0", "1", "2", "3"}
	// counts[position][element]
	var counts [n][n]int

	for range trials {
		q := newFilledQueue(paths...)
		q.Shuffle(rng)
		for pos, p := range q.Tracks() {
			counts[pos][int(p[0]-'0')]++
		}
	}

	expected := float64(trials) / n
	// Chi-square per position, 3 degrees of freedom; 25.9 is p=0.00001.
	for pos := range n {
		chi := 0.0
		for el := range n {
			d := float64(counts[pos][el]) - expected
			chi += d * d / expected
		}
		if chi > 25.9 {
			t.Errorf("position %d distribution not uniform: counts=%v chi2=%.2f", pos, counts[pos], chi)
		}
	}
}

func TestQueue_Shuffle_EmptyAndSingle(t *testing.T) {
	q := NewQueue()
	q.Shuffle(nil)
	if !q.IsEmpty() {
		t.Error("empty queue should stay empty")
	}

	q = newFilledQueue("/only.mp3")
	q.Shuffle(nil)
	if got := q.Tracks(); !slices.Equal(got, []string{"/only.mp3"}) {
		t.Errorf("Tracks() = %v, want [/only.mp3]", got)
	}
}
