// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback
	OpLoadTrack Op = "load track"

	// Host commands
	OpRunCommand Op = "run command"
	OpStartup    Op = "open startup files"

	// Session state
	OpRestoreQueue Op = "restore queue"

	// Last.fm
	OpLastfmAuth       Op = "authorize with Last.fm"
	OpLastfmScrobble   Op = "scrobble"
	OpLastfmNowPlaying Op = "update now playing"

	// Initialization
	OpInitialize Op = "initialize player"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
