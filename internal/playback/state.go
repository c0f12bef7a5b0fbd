// internal/playback/state.go
package playback

// State represents the playback state.
//
// State diagram:
//
//	Idle ──load──► Playing ◄──Play/Pause──► Paused
//	  ▲               │                        │
//	  └──empty path───┴──── open failure ──────┘
//
// Idle means no track is loaded. A track that ends with nothing to
// advance to stays loaded and becomes Paused.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsLoaded returns true if a track is loaded (playing or paused).
func (s State) IsLoaded() bool {
	return s == StatePlaying || s == StatePaused
}
