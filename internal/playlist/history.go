package playlist

import "slices"

// History records track-list snapshots for undo/redo. It holds at most
// limit snapshots, the current one included; the oldest are dropped first.
type History struct {
	past    [][]string
	present []string
	future  [][]string
	started bool
	limit   int
}

// NewHistory creates a history holding at most limit snapshots.
func NewHistory(limit int) *History {
	return &History{limit: max(limit, 1)}
}

// Push records tracks as the current snapshot and discards redo states.
func (h *History) Push(tracks []string) {
	if h.started {
		h.past = append(h.past, h.present)
		if over := len(h.past) - (h.limit - 1); over > 0 {
			h.past = slices.Delete(h.past, 0, over)
		}
	}
	h.started = true
	h.present = slices.Clone(tracks)
	h.future = nil
}

// Undo steps back one snapshot and returns a copy of it.
func (h *History) Undo() ([]string, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.future = append(h.future, h.present)
	h.present = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return slices.Clone(h.present), true
}

// Redo steps forward one snapshot and returns a copy of it.
func (h *History) Redo() ([]string, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.past = append(h.past, h.present)
	h.present = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return slices.Clone(h.present), true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }
