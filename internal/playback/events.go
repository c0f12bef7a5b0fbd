package playback

import "time"

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the currently playing path changes,
// including to the empty path when the queue runs out.
//
// The app should handle track-related side effects (persisting the
// current path, notifications) in response to this event.
type TrackChange struct {
	PreviousPath string
	Path         string
	Index        int
}

// QueueChange is emitted when the queue contents or current index change.
type QueueChange struct {
	Tracks []string
	Index  int
}

// VolumeChange is emitted when the volume level changes.
type VolumeChange struct {
	Volume float64
}

// PositionChange is emitted when a seek occurs.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when a track cannot be loaded.
type ErrorEvent struct {
	Operation string // e.g., "load"
	Path      string // track path if applicable
	Err       error
}
